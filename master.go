// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// Telegram describes one master-side query (§3, "Query descriptor").
type Telegram struct {
	Slave uint8  // 0 = broadcast, 1..247 = unicast slave
	Func  FnCode
	Addr  uint16
	Qty   uint16 // quantity of coils/registers for reads, and for FC 15/16
	Value uint16 // coil status (0xFF00/0x0000) or register value for FC 5/6
}

// MasterEngine is the master (client) role's query/response state machine
// (§4.7). It is not safe for concurrent use from more than one goroutine;
// see §5.
type MasterEngine struct {
	Config

	tp  Transport
	clk Clock

	state     State
	lastError Code
	timedOut  bool
	cnt       counters
	t         timers

	framer  RxFramer
	pending Telegram
	image   []uint16
}

// Init prepares the engine to issue queries over tp, using clk for
// timestamps. It drains any pending input and resets counters, matching
// the "started" step of the engine lifecycle (§3).
func (m *MasterEngine) Init(tp Transport, clk Clock) {
	m.Config.fixup()
	m.tp = tp
	m.clk = clk
	m.state = Idle
	m.lastError = OK
	m.timedOut = false
	m.cnt.Reset()
	m.framer.Init(m.T35Ms)
	for tp.Available() > 0 {
		tp.ReadByte()
	}
}

func (m *MasterEngine) State() State     { return m.state }
func (m *MasterEngine) LastError() Code  { return m.lastError }
func (m *MasterEngine) InCount() uint64  { return m.cnt.Get(CntIn) }
func (m *MasterEngine) OutCount() uint64 { return m.cnt.Get(CntOut) }
func (m *MasterEngine) ErrCount() uint64 { return m.cnt.Get(CntErr) }

// TimeoutExpired reports whether the most recently completed Query timed
// out waiting for a reply, as opposed to getting no reply for some other
// reason (bad CRC, overflow). NoReply alone (§7) cannot distinguish the
// two; this latches across Poll calls and is cleared by the next Query or
// Init.
func (m *MasterEngine) TimeoutExpired() bool { return m.timedOut }

// buildRequest assembles the PDU for t into buf (without CRC), per the
// per-function encodings of §4.2/§4.5.
func buildRequest(buf *FrameBuffer, t Telegram) bool {
	buf.Reset()
	if !buf.Append(t.Slave, byte(t.Func)) {
		return false
	}
	switch t.Func {
	case RdCoils, RdInputs, RdHoldingRegs, RdInputRegs, WrCoils, WrRegs:
		hdr := make([]byte, 4)
		putWord(hdr[0:2], t.Addr)
		putWord(hdr[2:4], t.Qty)
		if !buf.Append(hdr...) {
			return false
		}
	case WrCoil, WrReg:
		hdr := make([]byte, 4)
		putWord(hdr[0:2], t.Addr)
		putWord(hdr[2:4], t.Value)
		if !buf.Append(hdr...) {
			return false
		}
	case Diag:
		hdr := make([]byte, 4)
		putWord(hdr[0:2], t.Addr) // sub-code
		putWord(hdr[2:4], t.Value)
		if !buf.Append(hdr...) {
			return false
		}
	default:
		return false
	}
	return true
}

// appendWriteMultiplePayload appends the variable-length byte-count and
// payload fields required by FC 15/16, reading their source data from
// image.
func appendWriteMultiplePayload(buf *FrameBuffer, t Telegram, image []uint16) bool {
	switch t.Func {
	case WrCoils:
		byteCnt := int((t.Qty + 7) / 8)
		if !buf.Append(byte(byteCnt)) {
			return false
		}
		packed := make([]byte, byteCnt)
		for i := uint16(0); i < t.Qty; i++ {
			if image[i] != 0 {
				packed[i/8] |= 1 << (i % 8)
			}
		}
		return buf.Append(packed...)
	case WrRegs:
		if !buf.Append(byte(2 * t.Qty)) {
			return false
		}
		pair := make([]byte, 2)
		for i := uint16(0); i < t.Qty; i++ {
			putWord(pair, image[i])
			if !buf.Append(pair...) {
				return false
			}
		}
		return true
	}
	return true
}

// Query issues a new request. Preconditions (§4.7): the engine's role is
// master (always true for MasterEngine), the state is Idle, and
// t.Slave is a legal node address (0..247). image supplies write payloads
// (FC 15/16) on the way in and receives read results on the way out, via
// the subsequent Poll calls.
func (m *MasterEngine) Query(t Telegram, image []uint16) Code {
	if m.state != Idle {
		return ErrPolling
	}
	if t.Slave > 247 {
		// -3 is shared with ErrBuffOverflow in the original error
		// taxonomy (§7); both mean "this request cannot go out".
		return ErrBuffOverflow
	}
	buf := m.framer.Buf()
	if !buildRequest(buf, t) {
		return ErrBuffOverflow
	}
	if t.Func == WrCoils || t.Func == WrRegs {
		if !appendWriteMultiplePayload(buf, t, image) {
			return ErrBuffOverflow
		}
	}
	adu := SerAddCRC(buf.Data)
	buf.Data = adu

	if err := sendFrame(m.tp, &m.Config, adu); err != nil {
		m.lastError = NoReply
		m.cnt.Inc(CntErr)
		return NoReply
	}
	m.cnt.Inc(CntOut)
	now := m.clk.NowMs()
	m.t.txCompleteMs = now
	m.t.lastByteMs = now
	m.pending = t
	m.image = image
	m.lastError = OK
	m.timedOut = false

	if t.Slave == 0 {
		// Broadcast: no reply is ever sent. Per REDESIGN FLAGS, the
		// engine returns directly to Idle instead of waiting to time
		// out against a reply that will never arrive.
		m.state = Idle
		m.framer.Init(m.T35Ms)
		return OK
	}
	m.state = WaitingReply
	m.framer.Init(m.T35Ms)
	return OK
}

// Poll advances the master's wait for a reply (§4.7). It returns the
// number of bytes in the received frame (0 if none yet) and the resulting
// Code: OK on a valid, matching response (with data already copied into
// the image passed to Query); NoReply on timeout or CRC failure;
// ErrException if the slave replied with an exception; CodeExcFuncCode if
// the response used an unsupported function code.
func (m *MasterEngine) Poll() (int, Code) {
	if m.state != WaitingReply {
		return 0, OK
	}
	now := m.clk.NowMs()
	if elapsedMs(now, m.t.txCompleteMs) > m.TimeoutMs {
		m.state = Idle
		m.lastError = NoReply
		m.timedOut = true
		m.cnt.Inc(CntErr)
		return 0, NoReply
	}
	complete, overflow := m.framer.Poll(m.tp, now)
	if overflow {
		m.state = Idle
		m.lastError = ErrBuffOverflow
		m.cnt.Inc(CntErr)
		return 0, ErrBuffOverflow
	}
	if !complete {
		return 0, OK
	}
	a := m.framer.Buf().Bytes()
	code := ValidateAnswer(a)
	m.cnt.Inc(CntIn)
	m.state = Idle
	m.lastError = code
	if code != OK {
		if code == NoReply {
			m.cnt.Inc(CntErr)
		}
		return len(a), code
	}
	if unpack, ok := masterUnpackers[a.FnCode()]; ok {
		unpack(a, m.image)
	}
	return len(a), OK
}
