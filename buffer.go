// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// FrameBuffer is a fixed-capacity byte buffer holding at most MaxBuffer
// bytes of a single Modbus serial ADU (address + PDU + CRC). It never
// allocates: Data is always a slice of buf. Reset it before assembling a
// new frame; keep appending to Data while the frame is accumulating.
type FrameBuffer struct {
	buf  [MaxBuffer]byte
	Data []byte
}

// Reset empties the buffer, positioning Data at its start.
func (f *FrameBuffer) Reset() {
	f.Data = f.buf[:0]
}

// Cap returns the buffer's fixed capacity (MaxBuffer).
func (f *FrameBuffer) Cap() int { return len(f.buf) }

// Len returns the number of bytes currently held.
func (f *FrameBuffer) Len() int { return len(f.Data) }

// Full reports whether the buffer has reached its capacity.
func (f *FrameBuffer) Full() bool { return len(f.Data) >= len(f.buf) }

// Append appends b to the buffer. It reports false, leaving the buffer
// unchanged, if b would overflow the fixed capacity.
func (f *FrameBuffer) Append(b ...byte) bool {
	if len(f.Data)+len(b) > len(f.buf) {
		return false
	}
	f.Data = append(f.Data, b...)
	return true
}

// Set overwrites byte i (growing Data if necessary). It reports false,
// leaving the buffer unchanged, if i is out of capacity.
func (f *FrameBuffer) Set(i int, b byte) bool {
	if i >= len(f.buf) {
		return false
	}
	f.buf[i] = b
	if i >= len(f.Data) {
		f.Data = f.buf[:i+1]
	}
	return true
}

// Bytes returns the buffer's current contents as a SerADU.
func (f *FrameBuffer) Bytes() SerADU { return SerADU(f.Data) }

// Truncate shrinks Data to n bytes. It is a no-op if n >= Len().
func (f *FrameBuffer) Truncate(n int) {
	if n < len(f.Data) {
		f.Data = f.Data[:n]
	}
}
