// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// State is an engine's position in its (tiny) state machine. Slaves are
// always Idle between Poll calls; only MasterEngine uses WaitingReply.
type State int

const (
	Idle State = iota
	WaitingReply
)

func (s State) String() string {
	if s == WaitingReply {
		return "WaitingReply"
	}
	return "Idle"
}

// Default configuration values (§6).
const (
	DflTimeoutMs    = 1000
	DflTxenOvertime = 500
	DflT35Ms        = 5
	DflMaxBuffer    = MaxBuffer
)

// Config holds the tunable parameters shared by MasterEngine and
// SlaveEngine. Zero-valued fields are replaced by the Dfl* defaults when
// the engine is initialized.
type Config struct {
	// TxenPin selects RS-485 direction control: 0 or 1 means none
	// (USB/RS-232); >1 means drive this pin during transmission. The
	// core only uses it as a flag (>1) to decide whether to call
	// Transport.SetDirection; the physical pin number is meaningful
	// only to the Transport implementation.
	TxenPin int
	// TimeoutMs is the master's reply timeout, measured from the end
	// of request transmission.
	TimeoutMs uint32
	// TxenOvertime is the number of tight-loop iterations spent after
	// Transport.Flush returns, before releasing the RS-485 driver, to
	// let the last stop bit clear the wire.
	TxenOvertime int
	// T35Ms is the inter-character silence threshold used to delimit
	// frames, approximating the 3.5-character-time gap mandated by the
	// Modbus-over-serial-line spec.
	T35Ms uint32
}

func (c *Config) fixup() {
	if c.TimeoutMs == 0 {
		c.TimeoutMs = DflTimeoutMs
	}
	if c.TxenOvertime == 0 {
		c.TxenOvertime = DflTxenOvertime
	}
	if c.T35Ms == 0 {
		c.T35Ms = DflT35Ms
	}
}

// timers tracks the millisecond timestamps an engine needs: the last time
// any byte activity was observed and the moment the last request's
// transmission completed. The master's reply deadline is derived from
// txCompleteMs and TimeoutMs rather than stored.
type timers struct {
	lastByteMs   uint32
	txCompleteMs uint32
}

// useDirection reports whether the transport's direction-control pin
// should be toggled around a transmission.
func (c *Config) useDirection() bool { return c.TxenPin > 1 }

// txenOvertimeDelay busy-spins the configured number of iterations, delaying
// the RS-485 driver release after Transport.Flush has returned. This
// mirrors the original firmware's tight loop after TX-empty; there is no
// blocking primitive to wait on here since the delay is sub-character-time
// and the whole point is to occupy the CPU until the line has settled.
func (c *Config) txenOvertimeDelay() {
	for i := 0; i < c.TxenOvertime; i++ {
		// Deliberately empty: see doc comment.
	}
}

// sendFrame transmits buf (address+PDU+CRC already appended) through tp,
// observing the RS-485 direction-control discipline described in §5.
func sendFrame(tp Transport, cfg *Config, buf []byte) error {
	if cfg.useDirection() {
		tp.SetDirection(true)
	}
	err := tp.Write(buf)
	if err == nil {
		err = tp.Flush()
	}
	if cfg.useDirection() {
		cfg.txenOvertimeDelay()
		tp.SetDirection(false)
	}
	return err
}
