// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

import "testing"

func TestRxFramerPollWaitsForT35(t *testing.T) {
	var f RxFramer
	f.Init(5)
	tp := &fakeTransport{}
	tp.rx.push(0x01, byte(RdHoldingRegs), 0x00, 0x00, 0x00, 0x01, 0x00, 0x00)

	complete, overflow := f.Poll(tp, 0)
	if complete || overflow {
		t.Fatal("frame reported complete before any T3.5 gap elapsed")
	}
	complete, overflow = f.Poll(tp, 4)
	if complete || overflow {
		t.Fatal("frame reported complete before the full T3.5 gap elapsed")
	}
	complete, overflow = f.Poll(tp, 5)
	if overflow {
		t.Fatal("unexpected overflow")
	}
	if !complete {
		t.Fatal("frame not reported complete once the T3.5 gap elapsed")
	}
	if f.Buf().Len() != 8 {
		t.Errorf("framed length = %d, want 8", f.Buf().Len())
	}
}

func TestRxFramerPollOverflow(t *testing.T) {
	var f RxFramer
	f.Init(5)
	tp := &fakeTransport{}
	for i := 0; i < MaxBuffer+1; i++ {
		tp.rx.push(0x00)
	}
	f.Poll(tp, 0)
	_, overflow := f.Poll(tp, 5)
	if !overflow {
		t.Fatal("expected overflow for a frame exceeding MaxBuffer")
	}
}

func TestRxFramerPollIRQAccumulatesAndDelimits(t *testing.T) {
	var f RxFramer
	f.Init(5)
	frame := []byte{0x01, byte(WrReg), 0x00, 0x05, 0x00, 0x2a}
	frame = SerAddCRC(frame)

	var complete bool
	now := uint32(0)
	for _, b := range frame {
		complete, _ = f.PollIRQ(b, 0, now)
		now++
	}
	if !complete {
		t.Fatal("PollIRQ did not report completion on the last byte of a fixed-length frame")
	}
	if f.Buf().Len() != len(frame) {
		t.Errorf("framed length = %d, want %d", f.Buf().Len(), len(frame))
	}
}

func TestRxFramerPollIRQFiltersForeignAddress(t *testing.T) {
	var f RxFramer
	f.Init(5)
	complete, _ := f.PollIRQ(0x07, 3, 0)
	if complete {
		t.Fatal("PollIRQ accepted a byte addressed to a different slave id")
	}
	if f.Buf().Len() != 0 {
		t.Error("a filtered foreign-address byte should not be buffered")
	}
}

func TestRxFramerPollIRQAcceptsBroadcast(t *testing.T) {
	var f RxFramer
	f.Init(5)
	complete, _ := f.PollIRQ(0x00, 3, 0)
	if complete {
		t.Fatal("single byte should never complete a frame")
	}
	if f.Buf().Len() != 1 {
		t.Error("broadcast leading byte (0x00) should be buffered even with a non-zero local id")
	}
}

func TestRxFramerPollIRQExtendsForByteCount(t *testing.T) {
	var f RxFramer
	f.Init(5)
	frame := []byte{0x01, byte(WrRegs), 0x00, 0x01, 0x00, 0x02, 0x04, 0x00, 0x0a, 0x00, 0x14}
	frame = SerAddCRC(frame)

	var complete bool
	now := uint32(0)
	for i, b := range frame {
		complete, _ = f.PollIRQ(b, 0, now)
		now++
		if i < len(frame)-1 && complete {
			t.Fatalf("frame reported complete early, at byte %d of %d", i, len(frame))
		}
	}
	if !complete {
		t.Fatal("PollIRQ did not report completion on the last byte of a variable-length frame")
	}
}

func TestRxFramerPollIRQRestartsAfterGap(t *testing.T) {
	var f RxFramer
	f.Init(5)
	f.PollIRQ(0x01, 0, 0)
	// A gap longer than T3.5 should discard the partial frame and treat
	// the next byte as the start of a new one.
	complete, _ := f.PollIRQ(byte(RdHoldingRegs), 0, 10)
	if complete {
		t.Fatal("unexpected completion")
	}
	if f.Buf().Len() != 1 {
		t.Errorf("buffer length after gap restart = %d, want 1", f.Buf().Len())
	}
}
