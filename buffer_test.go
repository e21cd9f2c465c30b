// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

import "testing"

func TestFrameBufferAppendAndOverflow(t *testing.T) {
	var buf FrameBuffer
	buf.Reset()
	if buf.Len() != 0 {
		t.Fatalf("Len() = %d after Reset, want 0", buf.Len())
	}
	big := make([]byte, buf.Cap())
	if !buf.Append(big...) {
		t.Fatal("Append() failed filling the buffer exactly to capacity")
	}
	if !buf.Full() {
		t.Error("Full() = false at capacity")
	}
	if buf.Append(0x00) {
		t.Error("Append() succeeded past capacity")
	}
}

func TestFrameBufferSetAndTruncate(t *testing.T) {
	var buf FrameBuffer
	buf.Reset()
	buf.Append(0x01, 0x02, 0x03)
	if !buf.Set(1, 0xff) {
		t.Fatal("Set() failed in-range")
	}
	if buf.Data[1] != 0xff {
		t.Errorf("Data[1] = %#x, want 0xff", buf.Data[1])
	}
	buf.Truncate(1)
	if buf.Len() != 1 {
		t.Errorf("Len() after Truncate(1) = %d, want 1", buf.Len())
	}
	buf.Truncate(10)
	if buf.Len() != 1 {
		t.Errorf("Truncate() past Len() should be a no-op, got Len() = %d", buf.Len())
	}
}

func TestFrameBufferSetOutOfCapacity(t *testing.T) {
	var buf FrameBuffer
	if buf.Set(buf.Cap(), 0x01) {
		t.Error("Set() succeeded at index == Cap()")
	}
}
