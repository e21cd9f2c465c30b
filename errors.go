// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

import "fmt"

// Code is the engine's internal error/status code. Positive values below
// 0x80 are Modbus exception codes (sent on the wire, in an exception
// reply); negative values are local-only conditions never put on the
// wire; NoReply is the sentinel overloaded (per the Modbus-over-serial
// convention) to mean "treat this inbound frame as if it never arrived".
type Code int

const (
	// OK is the zero value: no error, no exception.
	OK Code = 0

	// Modbus exception codes, mirrored from ExCode. A slave that
	// detects one of these replies with an exception frame; a master
	// that detects one (via ErrException) does not.
	CodeExcFuncCode  Code = Code(ExcFuncCode)
	CodeExcAddrRange Code = Code(ExcAddrRange)
	CodeExcRegsQuant Code = Code(ExcRegsQuant)
	CodeExcExecute   Code = Code(ExcExecute)

	// Local-only conditions.
	ErrNotMaster    Code = -1
	ErrPolling      Code = -2
	ErrBuffOverflow Code = -3
	ErrBadCRC       Code = -4
	ErrException    Code = -5

	// NoReply (255) is a CRC mismatch or a master timeout: the frame
	// is discarded, counters reflect it, but nothing is transmitted.
	NoReply Code = 255
)

func (c Code) Error() string {
	switch c {
	case OK:
		return "ok"
	case CodeExcFuncCode:
		return "exception: unsupported function code"
	case CodeExcAddrRange:
		return "exception: address out of range"
	case CodeExcRegsQuant:
		return "exception: quantity out of range"
	case CodeExcExecute:
		return "exception: execution failed"
	case ErrNotMaster:
		return "query issued on a non-master engine"
	case ErrPolling:
		return "query issued while a reply is still outstanding"
	case ErrBuffOverflow:
		return "frame exceeded the maximum buffer size"
	case ErrBadCRC:
		return "bad frame CRC"
	case ErrException:
		return "slave replied with an exception"
	case NoReply:
		return "no reply (timeout or discarded frame)"
	default:
		return fmt.Sprintf("modbus: unknown code %d", int(c))
	}
}

// IsException reports whether c is one of the four Modbus exception codes
// that a slave reports back to the master in an exception reply.
func (c Code) IsException() bool {
	return c == CodeExcFuncCode || c == CodeExcAddrRange ||
		c == CodeExcRegsQuant || c == CodeExcExecute
}

// ErrIO wraps an I/O error returned by a Transport implementation. Core
// engine code never returns one directly (Transport has no error-returning
// reads in the polled hot path); it exists for the ambient adapters in
// internal/serialtransport and the CLI built on top of them.
type ErrIO struct {
	Err error
}

func (e *ErrIO) Error() string { return "modbus: I/O error: " + e.Err.Error() }

func (e *ErrIO) Unwrap() error { return e.Err }

// WrapErrIO wraps e in an ErrIO, unless it already is one (or nil), so
// ambient adapters can pass an underlying driver error through a single
// call instead of constructing ErrIO by hand at every I/O boundary.
func WrapErrIO(e error) error {
	if e == nil {
		return nil
	}
	if _, ok := e.(*ErrIO); ok {
		return e
	}
	return &ErrIO{e}
}
