// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// SlaveEngine is the slave (server) role's request/response state
// machine (§4.8). It is purely reactive: Poll does nothing until a frame
// addressed to it (or a broadcast) has been fully received. It is not
// safe for concurrent use from more than one goroutine; see §5.
type SlaveEngine struct {
	Config

	id  uint8
	tp  Transport
	clk Clock

	lastError Code
	cnt       counters

	framer RxFramer
}

// Init prepares the engine to serve requests addressed to id (1..247)
// over tp, using clk for timestamps. It drains any pending input and
// resets counters.
func (s *SlaveEngine) Init(id uint8, tp Transport, clk Clock) {
	s.Config.fixup()
	s.id = id
	s.tp = tp
	s.clk = clk
	s.lastError = OK
	s.cnt.Reset()
	s.framer.Init(s.T35Ms)
	for tp.Available() > 0 {
		tp.ReadByte()
	}
}

func (s *SlaveEngine) ID() uint8          { return s.id }
func (s *SlaveEngine) LastError() Code    { return s.lastError }
func (s *SlaveEngine) InCount() uint64    { return s.cnt.Get(CntIn) }
func (s *SlaveEngine) OutCount() uint64   { return s.cnt.Get(CntOut) }
func (s *SlaveEngine) ErrCount() uint64   { return s.cnt.Get(CntErr) }

// BuildException rewrites buf in place to hold an exception reply:
// [id][original_func|ExcFlag][code], length ExceptionSz (§4.9). CRC is
// appended separately, by the caller, exactly as for a normal reply.
func BuildException(buf *FrameBuffer, id uint8, fn FnCode, code ExCode) {
	buf.Reset()
	exc := [ExceptionSz]byte{id, byte(fn) | ExcFlag, byte(code)}
	buf.Append(exc[:]...)
}

// Poll runs one iteration of the slave's reactive loop (§4.8): collect a
// frame, drop it if not addressed to this slave, validate it, dispatch the
// matching FunctionHandler against banks, and transmit the reply (unless
// the request was a broadcast, or validation said nothing should be
// sent). It returns the number of bytes transmitted (0 if nothing was
// sent this call) and the last validation/execution Code.
func (s *SlaveEngine) Poll(banks *RegisterBanks) (int, Code) {
	now := s.clk.NowMs()
	complete, overflow := s.framer.Poll(s.tp, now)
	if overflow {
		s.lastError = ErrBuffOverflow
		s.cnt.Inc(CntErr)
		return 0, ErrBuffOverflow
	}
	if !complete {
		return 0, OK
	}
	return s.dispatch(banks, now)
}

// PollIRQ feeds one received byte into the byte-by-byte framer (§4.3,
// interrupt mode) and, once a frame completes, runs the same
// validate-dispatch-reply sequence as Poll.
func (s *SlaveEngine) PollIRQ(b byte, banks *RegisterBanks) (int, Code) {
	now := s.clk.NowMs()
	complete, overflow := s.framer.PollIRQ(b, s.id, now)
	if overflow {
		s.lastError = ErrBuffOverflow
		s.cnt.Inc(CntErr)
		return 0, ErrBuffOverflow
	}
	if !complete {
		return 0, OK
	}
	return s.dispatch(banks, now)
}

func (s *SlaveEngine) dispatch(banks *RegisterBanks, now uint32) (int, Code) {
	buf := s.framer.Buf()
	a := buf.Bytes()
	node := a.Node()
	broadcast := node == 0
	if !broadcast && node != s.id {
		// Not ours: silently ignore (another slave's traffic, or a
		// response we happen to overhear).
		return 0, OK
	}

	code := ValidateRequest(a, banks)
	s.cnt.Inc(CntIn)
	s.lastError = code
	if code == NoReply {
		s.cnt.Inc(CntErr)
		return 0, NoReply
	}
	if code.IsException() {
		if broadcast {
			// Broadcast writes never produce a reply, exception
			// or otherwise (invariant 6).
			return 0, code
		}
		BuildException(buf, s.id, a.FnCode(), ExCode(code))
		adu := SerAddCRC(buf.Data)
		buf.Data = adu
		if err := sendFrame(s.tp, &s.Config, adu); err != nil {
			s.cnt.Inc(CntErr)
			return 0, code
		}
		s.cnt.Inc(CntOut)
		return len(adu), code
	}

	fn := a.FnCode()
	handler := slaveHandlers[fn]
	if handler == nil {
		// Unreachable: ValidateRequest already rejected unsupported
		// function codes. Kept defensive in case slaveHandlers and
		// the supported-function set ever drift apart.
		BuildException(buf, s.id, fn, ExcFuncCode)
		adu := SerAddCRC(buf.Data)
		buf.Data = adu
		sendFrame(s.tp, &s.Config, adu)
		return 0, CodeExcFuncCode
	}
	hcode := handler(buf, banks)
	if hcode != OK {
		BuildException(buf, s.id, fn, ExCode(hcode))
		adu := SerAddCRC(buf.Data)
		buf.Data = adu
		if broadcast {
			return 0, hcode
		}
		if err := sendFrame(s.tp, &s.Config, adu); err != nil {
			s.cnt.Inc(CntErr)
			return 0, hcode
		}
		s.cnt.Inc(CntOut)
		return len(adu), hcode
	}

	if broadcast {
		// The write already happened inside the handler; just
		// suppress the reply (invariant 6).
		return 0, OK
	}
	adu := SerAddCRC(buf.Data)
	buf.Data = adu
	if err := sendFrame(s.tp, &s.Config, adu); err != nil {
		s.cnt.Inc(CntErr)
		return 0, OK
	}
	s.cnt.Inc(CntOut)
	return len(adu), OK
}
