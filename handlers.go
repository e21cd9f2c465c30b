// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// FunctionHandler implements one slave-side function code (§4.5). buf
// holds the validated request as received (address + PDU + the request's
// own CRC) in buf.Data; the handler reads its operands from it and
// rewrites buf.Data in place to hold the reply without any CRC (the
// caller appends a fresh one). It returns OK
// on success or one of the ExcXXX codes if execution fails after the
// request already passed address-range validation (e.g. Diag with an
// unimplemented sub-function).
type FunctionHandler func(buf *FrameBuffer, banks *RegisterBanks) Code

// slaveHandlers is the dispatch table that replaces the function-code
// switch cascade of the original firmware (see SPEC_FULL.md §9, REDESIGN
// FLAGS). Diag is intentionally absent from RequestValidator's address
// checks but present here like any other handler.
var slaveHandlers = map[FnCode]FunctionHandler{
	RdCoils:       handleReadBits(false),
	RdInputs:      handleReadBits(true),
	RdHoldingRegs: handleReadRegs(false),
	RdInputRegs:   handleReadRegs(true),
	WrCoil:        handleWrCoil,
	WrReg:         handleWrReg,
	Diag:          handleDiag,
	WrCoils:       handleWrCoils,
	WrRegs:        handleWrRegs,
}

// echoHeader truncates buf to the first HeaderSz bytes of the request,
// i.e. produces the "echo address, function, starting address,
// value/quantity" reply shared by FC 5, 6, 15 and 16 (invariant 4).
func echoHeader(buf *FrameBuffer) {
	buf.Truncate(HeaderSz)
}

func handleReadBits(input bool) FunctionHandler {
	return func(buf *FrameBuffer, banks *RegisterBanks) Code {
		bits := banks.DO
		if input {
			bits = banks.DI
		}
		addr := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
		qty := word(buf.Data[OffNbHi], buf.Data[OffNbLo])
		byteCnt := int((qty + 7) / 8)
		buf.Truncate(SerHeadSz + 1)
		if !buf.Append(byte(byteCnt)) {
			return CodeExcExecute
		}
		packed := make([]byte, byteCnt)
		for i := uint16(0); i < qty; i++ {
			if bits[int(addr)+int(i)] {
				packed[i/8] |= 1 << (i % 8)
			}
		}
		if !buf.Append(packed...) {
			return CodeExcExecute
		}
		return OK
	}
}

func handleReadRegs(input bool) FunctionHandler {
	return func(buf *FrameBuffer, banks *RegisterBanks) Code {
		regs := banks.AO
		if input {
			regs = banks.AI
		}
		addr := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
		qty := word(buf.Data[OffNbHi], buf.Data[OffNbLo])
		buf.Truncate(SerHeadSz + 1)
		if !buf.Append(byte(2 * qty)) {
			return CodeExcExecute
		}
		pair := make([]byte, 2)
		for i := uint16(0); i < qty; i++ {
			v := regs[int(addr)+int(i)]
			putWord(pair, v)
			if !buf.Append(pair...) {
				return CodeExcExecute
			}
		}
		return OK
	}
}

// handleWrCoil implements FC 5. Per §4.5's documented edge policy, any
// value-high byte other than 0xFF or 0x00 is treated as 0x00 (false).
// This is deliberately not validated against the strict Modbus rule; see
// SPEC_FULL.md §9, Open Questions.
func handleWrCoil(buf *FrameBuffer, banks *RegisterBanks) Code {
	addr := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
	valHi := buf.Data[OffNbHi]
	banks.DO[addr] = valHi == 0xff
	echoHeader(buf)
	return OK
}

func handleWrReg(buf *FrameBuffer, banks *RegisterBanks) Code {
	addr := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
	val := word(buf.Data[OffNbHi], buf.Data[OffNbLo])
	banks.AO[addr] = val
	echoHeader(buf)
	return OK
}

// handleDiag implements the one Diagnostic (FC 8) sub-function this core
// supports beyond simple loop-back: sub-code 1 (restart communications).
// Sub-code 0 (return query data) and the restart both reply by echoing
// the request unchanged; every other sub-code is an unsupported function.
func handleDiag(buf *FrameBuffer, banks *RegisterBanks) Code {
	sub := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
	switch sub {
	case DiagQueryData:
		// Loop-back: reply == request header, minus the request's own CRC.
		echoHeader(buf)
		return OK
	case DiagRestartCom:
		if restartHook != nil {
			restartHook()
		}
		echoHeader(buf)
		return OK
	default:
		return CodeExcFuncCode
	}
}

// restartHook is an implementation-defined external hook invoked when a
// Diagnostic "restart communications" (sub-code 1) request is handled.
// It is nil by default; set it (e.g. from the CLI) to trigger an actual
// device restart. The core never calls it on any other path.
var restartHook func()

// SetRestartHook installs the function invoked on a Diagnostic restart
// (FC 8, sub-code 1) request. Passing nil disables it.
func SetRestartHook(fn func()) { restartHook = fn }

func handleWrCoils(buf *FrameBuffer, banks *RegisterBanks) Code {
	addr := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
	qty := word(buf.Data[OffNbHi], buf.Data[OffNbLo])
	payload := buf.Data[OffByteCnt+1:]
	for i := uint16(0); i < qty; i++ {
		byteIdx := i / 8
		if int(byteIdx) >= len(payload) {
			return CodeExcExecute
		}
		bit := payload[byteIdx]&(1<<(i%8)) != 0
		banks.DO[int(addr)+int(i)] = bit
	}
	echoHeader(buf)
	return OK
}

func handleWrRegs(buf *FrameBuffer, banks *RegisterBanks) Code {
	addr := word(buf.Data[OffAddHi], buf.Data[OffAddLo])
	qty := word(buf.Data[OffNbHi], buf.Data[OffNbLo])
	payload := buf.Data[OffByteCnt+1:]
	for i := uint16(0); i < qty; i++ {
		off := int(i) * 2
		if off+1 >= len(payload) {
			return CodeExcExecute
		}
		banks.AO[int(addr)+int(i)] = word(payload[off], payload[off+1])
	}
	echoHeader(buf)
	return OK
}

// MasterUnpacker implements the master-side half of one function code
// (§4.6): on a successful response it copies the payload into the
// caller-supplied data image.
type MasterUnpacker func(resp SerADU, image []uint16)

var masterUnpackers = map[FnCode]MasterUnpacker{
	RdCoils:       unpackBits,
	RdInputs:      unpackBits,
	RdHoldingRegs: unpackRegs,
	RdInputRegs:   unpackRegs,
	WrCoil:        unpackEchoValue,
	WrReg:         unpackEchoValue,
	WrCoils:       func(SerADU, []uint16) {},
	WrRegs:        func(SerADU, []uint16) {},
}

// unpackBits reproduces the original FC 1/2 response layout verbatim:
// image word i receives response byte 2i in its low half and response
// byte 2i+1 in its high half. This is not a symmetric per-coil unpack
// (see SPEC_FULL.md §4.6 and §9).
func unpackBits(resp SerADU, image []uint16) {
	data := resp.PDU()[2:]
	for i := range image {
		lo := byte(0)
		hi := byte(0)
		if 2*i < len(data) {
			lo = data[2*i]
		}
		if 2*i+1 < len(data) {
			hi = data[2*i+1]
		}
		image[i] = uint16(hi)<<8 | uint16(lo)
	}
}

func unpackRegs(resp SerADU, image []uint16) {
	data := resp.PDU()[2:]
	for i := range image {
		off := 2 * i
		if off+1 >= len(data) {
			break
		}
		image[i] = word(data[off], data[off+1])
	}
}

func unpackEchoValue(resp SerADU, image []uint16) {
	if len(image) > 0 {
		image[0] = word(resp[OffNbHi], resp[OffNbLo])
	}
}
