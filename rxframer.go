// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// RxFramer delimits Modbus RTU frames by inter-character silence (T3.5).
// It has two independent entry points against the same accumulating
// state: Poll, for callers that drive it from a periodic loop and only
// know how many bytes are currently buffered in the UART (§4.3, "Polled
// mode"); and PollIRQ, for callers that feed it one byte at a time from a
// UART RX interrupt handler (§4.3, "Interrupt/byte-by-byte mode"). Mixing
// the two on the same RxFramer is undefined, per the core's single-driver
// discipline (§5).
type RxFramer struct {
	buf        FrameBuffer
	t35Ms      uint32
	lastByteMs uint32
	lastAvail  uint16
	idx        int
}

// Init (re)starts the framer: any partially-accumulated frame is
// discarded.
func (f *RxFramer) Init(t35Ms uint32) {
	f.t35Ms = t35Ms
	f.buf.Reset()
	f.lastAvail = 0
	f.idx = 0
}

// Buf exposes the framer's internal buffer. It is only meaningful to read
// right after Poll or PollIRQ report a complete frame.
func (f *RxFramer) Buf() *FrameBuffer { return &f.buf }

// Poll runs the polled-mode framer for one iteration. now is the current
// timestamp (Clock.NowMs). It returns complete == true exactly when a full
// frame has been drained into f.Buf(); overflow == true if the RX FIFO
// held more than MaxBuffer bytes, in which case the partial frame is
// discarded and the caller should count it as an error.
//
// The T3.5 gap check is applied on every call, uniformly, regardless of
// role, unlike the original firmware, which applied it inconsistently
// between the master and slave polled loops (see SPEC_FULL.md §9).
func (f *RxFramer) Poll(tp Transport, now uint32) (complete, overflow bool) {
	avail := tp.Available()
	if avail != f.lastAvail {
		f.lastAvail = avail
		f.lastByteMs = now
		return false, false
	}
	if avail == 0 {
		return false, false
	}
	if elapsedMs(now, f.lastByteMs) < f.t35Ms {
		return false, false
	}
	f.buf.Reset()
	for i := uint16(0); i < avail; i++ {
		b, ok := tp.ReadByte()
		if !ok {
			break
		}
		if !f.buf.Append(b) {
			f.buf.Reset()
			f.lastAvail = 0
			return false, true
		}
	}
	f.lastAvail = 0
	return true, false
}

// PollIRQ feeds one received byte b into the byte-by-byte framer. localID
// is the engine's own slave id (0 for a master, which disables the
// leading-byte filter: a master accepts the first byte of any frame).
// now is the current timestamp.
func (f *RxFramer) PollIRQ(b byte, localID uint8, now uint32) (complete, overflow bool) {
	if f.idx > 0 && elapsedMs(now, f.lastByteMs) > f.t35Ms {
		f.idx = 0
	}
	f.lastByteMs = now

	if f.idx == 0 && localID != 0 && b != localID && b != 0 {
		// Foreign unicast frame: drop it a byte at a time, cheaper
		// than buffering and discarding at validation time.
		return false, false
	}
	if f.idx == 0 {
		// Starting a new frame: drop whatever the previous frame (a
		// served request, or its reply, if this buffer doubles as the
		// send buffer) left behind, so Data's length never outlives
		// the bytes actually received this time.
		f.buf.Reset()
	}
	if f.idx >= f.buf.Cap() {
		f.idx = 0
		return false, true
	}
	f.buf.Set(f.idx, b)
	f.idx++

	if f.idx < HeaderSz+SerCRCSz {
		return false, false
	}
	fn := FnCode(f.buf.Data[OffFunc] & ^ExcFlag)
	if fn == WrCoils || fn == WrRegs {
		need := int(f.buf.Data[OffByteCnt]) + HeaderSz + SerCRCSz + 1
		if f.idx < need {
			return false, false
		}
	}
	f.idx = 0
	return true, false
}
