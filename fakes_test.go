// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// fakeClock is a Clock whose value is advanced explicitly by tests, so
// timeout and T3.5 behavior can be exercised deterministically.
type fakeClock struct {
	ms uint32
}

func (c *fakeClock) NowMs() uint32 { return c.ms }

func (c *fakeClock) advance(d uint32) { c.ms += d }

// fifo is an unbounded byte queue used to model one direction of a wire.
type fifo struct {
	b []byte
}

func (f *fifo) push(b ...byte) { f.b = append(f.b, b...) }

func (f *fifo) avail() uint16 { return uint16(len(f.b)) }

func (f *fifo) pop() (byte, bool) {
	if len(f.b) == 0 {
		return 0, false
	}
	b := f.b[0]
	f.b = f.b[1:]
	return b, true
}

// fakeTransport is a Transport backed by two independent fifos: rx holds
// bytes the test (or a peer fakeTransport) has queued up for this side to
// read; tx accumulates everything this side writes, for the test to
// inspect. direction records the last value passed to SetDirection.
type fakeTransport struct {
	rx        fifo
	tx        []byte
	direction bool
	writeErr  error
	flushErr  error
}

func (t *fakeTransport) Available() uint16 { return t.rx.avail() }

func (t *fakeTransport) ReadByte() (byte, bool) { return t.rx.pop() }

func (t *fakeTransport) Write(b []byte) error {
	if t.writeErr != nil {
		return t.writeErr
	}
	t.tx = append(t.tx, b...)
	return nil
}

func (t *fakeTransport) Flush() error { return t.flushErr }

func (t *fakeTransport) SetDirection(tx bool) { t.direction = tx }

// deliver appends whatever the peer has written (peer.tx) onto t's rx
// queue and clears the peer's tx buffer, modeling one hop across a wire.
func (t *fakeTransport) deliver(peer *fakeTransport) {
	t.rx.push(peer.tx...)
	peer.tx = nil
}
