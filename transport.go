// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// Transport is the narrow, non-blocking capability the core requires from
// the byte-level serial driver (§6). It is the one abstraction that
// replaces the original's compile-time target macros (Arduino_h,
// STM32F1, ...): concrete implementations live out-of-core, e.g. in
// internal/serialtransport.
type Transport interface {
	// Available returns the number of bytes currently readable from
	// the RX FIFO, without consuming them.
	Available() uint16
	// ReadByte pops one byte from the RX FIFO. ok is false if the
	// FIFO was empty.
	ReadByte() (b byte, ok bool)
	// Write pushes bytes to the TX FIFO. It may block per-byte until
	// the UART is ready to accept the next one, but it does not wait
	// for the shift register to empty (see Flush).
	Write(b []byte) error
	// Flush blocks until the TX shift register is empty, i.e. until
	// the last stop bit has physically left the wire.
	Flush() error
	// SetDirection drives the RS-485 transceiver direction pin, when
	// the transport was configured with one (txen_pin > 1). It is a
	// no-op otherwise. tx == true selects the driver (transmit)
	// direction.
	SetDirection(tx bool)
}

// Clock is the narrow, monotonic millisecond timestamp the core requires
// (§6). All elapsed-time comparisons performed against it use unsigned
// subtraction so they remain correct across a 32-bit wraparound.
type Clock interface {
	NowMs() uint32
}

// elapsedMs returns now-since in milliseconds, correct across a uint32
// wraparound (per the Clock contract).
func elapsedMs(now, since uint32) uint32 {
	return now - since
}
