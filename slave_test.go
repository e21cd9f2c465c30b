// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

import "testing"

func newTestSlave(id uint8) (*SlaveEngine, *fakeTransport, *fakeClock) {
	var s SlaveEngine
	s.T35Ms = 1
	tp := &fakeTransport{}
	clk := &fakeClock{}
	s.Init(id, tp, clk)
	return &s, tp, clk
}

// pollSlaveUntilFramed mirrors pollMasterUntilFramed for the slave side.
func pollSlaveUntilFramed(s *SlaveEngine, banks *RegisterBanks, clk *fakeClock) (int, Code) {
	for i := 0; i < 10; i++ {
		n, code := s.Poll(banks)
		if n > 0 || code != OK {
			return n, code
		}
		clk.advance(1)
	}
	return 0, OK
}

func TestSlaveServesReadHoldingRegs(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	banks.AO[2] = 0x1234

	req := SerAddCRC([]byte{0x03, byte(RdHoldingRegs), 0x00, 0x02, 0x00, 0x01})
	tp.rx.push(req...)

	n, code := pollSlaveUntilFramed(s, banks, clk)
	if code != OK {
		t.Fatalf("Poll() = %v", code)
	}
	if n == 0 {
		t.Fatal("no reply transmitted")
	}
	want := SerAddCRC([]byte{0x03, byte(RdHoldingRegs), 0x02, 0x12, 0x34})
	if string(tp.tx) != string(want) {
		t.Errorf("reply = % x, want % x", tp.tx, want)
	}
}

func TestSlaveIgnoresForeignAddress(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	req := SerAddCRC([]byte{0x09, byte(RdHoldingRegs), 0x00, 0x00, 0x00, 0x01})
	tp.rx.push(req...)

	n, _ := pollSlaveUntilFramed(s, banks, clk)
	if n != 0 || len(tp.tx) != 0 {
		t.Errorf("slave replied to traffic addressed to a different node: n=%d tx=% x", n, tp.tx)
	}
}

func TestSlaveBroadcastNeverReplies(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	req := SerAddCRC([]byte{0x00, byte(WrReg), 0x00, 0x01, 0x00, 0x2a})
	tp.rx.push(req...)

	for i := 0; i < 10; i++ {
		s.Poll(banks)
		clk.advance(1)
	}
	if len(tp.tx) != 0 {
		t.Errorf("broadcast write produced a reply: % x", tp.tx)
	}
	if banks.AO[1] != 0x2a {
		t.Errorf("broadcast write did not take effect: AO[1] = %#x", banks.AO[1])
	}
}

func TestSlaveRepliesWithExceptionOnBadAddress(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	req := SerAddCRC([]byte{0x03, byte(RdHoldingRegs), 0x00, 0xff, 0x00, 0x01})
	tp.rx.push(req...)

	n, code := pollSlaveUntilFramed(s, banks, clk)
	if code != CodeExcAddrRange {
		t.Fatalf("Poll() = %v, want CodeExcAddrRange", code)
	}
	if n == 0 {
		t.Fatal("no exception reply transmitted")
	}
	reply := SerADU(tp.tx)
	if !reply.IsExc() || reply.ExCode() != ExcAddrRange {
		t.Errorf("reply = % x, not a well-formed ExcAddrRange exception", tp.tx)
	}
}

func TestSlaveRepliesWithExceptionOnUnsupportedFunction(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	req := SerAddCRC([]byte{0x03, 0x07})
	tp.rx.push(req...)

	n, code := pollSlaveUntilFramed(s, banks, clk)
	if code != CodeExcFuncCode {
		t.Fatalf("Poll() = %v, want CodeExcFuncCode", code)
	}
	if n == 0 {
		t.Fatal("no exception reply transmitted")
	}
}

func TestSlaveDropsBadCRCSilently(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	req := SerAddCRC([]byte{0x03, byte(RdHoldingRegs), 0x00, 0x00, 0x00, 0x01})
	req[len(req)-1] ^= 0xff
	tp.rx.push(req...)

	n, code := pollSlaveUntilFramed(s, banks, clk)
	if code != NoReply {
		t.Fatalf("Poll() = %v, want NoReply", code)
	}
	if n != 0 || len(tp.tx) != 0 {
		t.Error("slave must not reply at all to a frame with a bad CRC")
	}
}

func TestSlaveDiagQueryDataDoesNotDoubleCRC(t *testing.T) {
	s, tp, clk := newTestSlave(3)
	banks := testBanks()
	req := SerAddCRC([]byte{0x03, byte(Diag), 0x00, byte(DiagQueryData), 0x12, 0x34})
	tp.rx.push(req...)

	n, code := pollSlaveUntilFramed(s, banks, clk)
	if code != OK {
		t.Fatalf("Poll() = %v", code)
	}
	want := SerAddCRC([]byte{0x03, byte(Diag), 0x00, byte(DiagQueryData), 0x12, 0x34})
	if n != len(want) {
		t.Fatalf("reply length = %d, want %d (got % x)", n, len(want), tp.tx)
	}
	if string(tp.tx) != string(want) {
		t.Errorf("reply = % x, want % x", tp.tx, want)
	}
}

func TestSlavePollIRQDoesNotLeakStaleBytesAcrossFrames(t *testing.T) {
	s, tp, _ := newTestSlave(3)
	banks := testBanks()
	for i := range banks.AO {
		banks.AO[i] = 0x1111
	}

	long := SerAddCRC([]byte{0x03, byte(RdHoldingRegs), 0x00, 0x00, 0x00, 0x0a})
	var n int
	var code Code
	for _, b := range long {
		n, code = s.PollIRQ(b, banks)
	}
	if code != OK || n == 0 {
		t.Fatalf("first (long) request: n=%d code=%v", n, code)
	}
	longReplyLen := len(tp.tx)
	if longReplyLen <= 8 {
		t.Fatalf("expected a long reply, got % x", tp.tx)
	}

	tp.tx = nil
	short := SerAddCRC([]byte{0x03, byte(WrCoil), 0x00, 0x05, 0xff, 0x00})
	for _, b := range short {
		n, code = s.PollIRQ(b, banks)
	}
	if code != OK {
		t.Fatalf("second (short) request: Poll() = %v, want OK (stale trailing bytes from the previous frame must not corrupt validation)", code)
	}
	want := SerAddCRC([]byte{0x03, byte(WrCoil), 0x00, 0x05, 0xff, 0x00})
	if n != len(want) || string(tp.tx) != string(want) {
		t.Errorf("reply = % x, want % x (stale bytes from the longer prior reply leaked into this one)", tp.tx, want)
	}
}

func TestSlavePollIRQServesRequest(t *testing.T) {
	s, tp, _ := newTestSlave(3)
	banks := testBanks()
	banks.DO[5] = false
	req := SerAddCRC([]byte{0x03, byte(WrCoil), 0x00, 0x05, 0xff, 0x00})

	var n int
	var code Code
	for _, b := range req {
		n, code = s.PollIRQ(b, banks)
	}
	if code != OK {
		t.Fatalf("PollIRQ() = %v", code)
	}
	if n == 0 {
		t.Fatal("no reply transmitted after the final byte")
	}
	if !banks.DO[5] {
		t.Error("coil not set")
	}
	want := SerAddCRC([]byte{0x03, byte(WrCoil), 0x00, 0x05, 0xff, 0x00})
	if string(tp.tx) != string(want) {
		t.Errorf("reply = % x, want % x", tp.tx, want)
	}
}
