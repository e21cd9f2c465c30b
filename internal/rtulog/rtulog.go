// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package rtulog logs engine activity with log/slog, kept outside the
// core package so the engines themselves stay free of logging
// dependencies; callers that want diagnostics wrap their Poll loop with
// these helpers.
package rtulog

import (
	"log/slog"

	modbus "github.com/elenctl/modrtu"
)

// New returns a logger carrying role and id attributes, following the
// pack gateway's convention of attaching connection identity to every
// log line rather than repeating it in each message.
func New(role string, id uint8) *slog.Logger {
	return slog.Default().With("role", role, "id", id)
}

// MasterPoll logs the outcome of one MasterEngine.Poll call.
func MasterPoll(log *slog.Logger, n int, code modbus.Code) {
	switch {
	case code == modbus.OK && n > 0:
		log.Debug("reply received", "bytes", n)
	case code == modbus.OK:
		return // nothing happened this tick
	case code == modbus.NoReply:
		log.Warn("timeout waiting for reply")
	case code == modbus.ErrException:
		log.Warn("slave returned exception", "code", code)
	case code == modbus.ErrBuffOverflow:
		log.Error("receive buffer overflow")
	default:
		log.Warn("poll error", "code", code)
	}
}

// SlavePoll logs the outcome of one SlaveEngine.Poll/PollIRQ call.
func SlavePoll(log *slog.Logger, n int, code modbus.Code) {
	switch {
	case code == modbus.OK && n > 0:
		log.Debug("reply sent", "bytes", n)
	case code == modbus.OK:
		return
	case code == modbus.NoReply:
		log.Debug("dropped request with bad CRC")
	case code.IsException():
		log.Warn("exception reply sent", "code", code)
	case code == modbus.ErrBuffOverflow:
		log.Error("receive buffer overflow")
	default:
		log.Warn("poll error", "code", code)
	}
}

// Query logs a master-side request about to go out.
func Query(log *slog.Logger, t modbus.Telegram) {
	log.Debug("send query", "slave", t.Slave, "func", t.Func, "addr", t.Addr, "qty", t.Qty)
}
