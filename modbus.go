// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// Modbus serial ADU/PDU sizing. MaxBuffer bounds the whole on-wire frame
// (address + PDU + CRC); it is the only frame-size limit the core enforces.
const (
	MaxBuffer   = 64
	SerHeadSz   = 1
	SerCRCSz    = 2
	HeaderSz    = 6 // ID, FUNC, ADD_HI, ADD_LO, NB_HI, NB_LO, before CRC
	ExceptionSz = 3
)

// Named byte offsets within a serial ADU, per §4.2 of the frame codec.
const (
	OffID      = 0
	OffFunc    = 1
	OffAddHi   = 2
	OffAddLo   = 3
	OffNbHi    = 4
	OffNbLo    = 5
	OffByteCnt = 6
)

const (
	// ExcFlag is set on the function-code byte of an exception
	// (error) reply.
	ExcFlag byte = 1 << 7
)

// PDU is a Modbus protocol data unit: function code followed by its
// function-specific data, with neither the node address nor the CRC.
type PDU []byte

// FnCode is a Modbus function code, as carried on the wire.
type FnCode byte

// Function codes implemented by this engine. Everything else yields
// ExcFuncCode on the slave side, and CodeExcFuncCode from ValidateAnswer on
// the master side.
const (
	RdCoils       FnCode = 0x01
	RdInputs      FnCode = 0x02
	RdHoldingRegs FnCode = 0x03
	RdInputRegs   FnCode = 0x04
	WrCoil        FnCode = 0x05
	WrReg         FnCode = 0x06
	Diag          FnCode = 0x08
	WrCoils       FnCode = 0x0f
	WrRegs        FnCode = 0x10
)

// supportedFuncs is the fixed set of function codes this engine handles.
// Anything outside it draws ExcFuncCode (slave) / is rejected before the
// response is even parsed (master).
var supportedFuncs = map[FnCode]bool{
	RdCoils: true, RdInputs: true, RdHoldingRegs: true, RdInputRegs: true,
	WrCoil: true, WrReg: true, Diag: true, WrCoils: true, WrRegs: true,
}

func isSupported(f FnCode) bool { return supportedFuncs[f] }

// ExCode is a Modbus exception (error) code, carried as the single data
// byte of an exception reply.
type ExCode uint8

const (
	ExcFuncCode  ExCode = 0x01
	ExcAddrRange ExCode = 0x02
	ExcRegsQuant ExCode = 0x03
	ExcExecute   ExCode = 0x04
)

// Diagnostic (FC 8) sub-function codes. Only two of the many Modbus
// diagnostic sub-functions are implemented; see FunctionHandler for Diag.
const (
	DiagQueryData  uint16 = 0x0000
	DiagRestartCom uint16 = 0x0001
)

// word assembles a big-endian 16-bit value from its wire bytes.
func word(hi, lo byte) uint16 { return uint16(hi)<<8 | uint16(lo) }

// putWord writes v into b[0] (hi) and b[1] (lo), big-endian.
func putWord(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}
