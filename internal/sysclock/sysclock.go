// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package sysclock implements modbus.Clock against the wall clock.
package sysclock

import "time"

// Clock is a modbus.Clock backed by time.Now(), truncated to milliseconds
// and pinned to an arbitrary epoch (the moment New is called) so the
// returned values stay well clear of the uint32 wraparound boundary for
// the lifetime of a normal process.
type Clock struct {
	epoch time.Time
}

// New returns a Clock epoched at the current time.
func New() *Clock {
	return &Clock{epoch: time.Now()}
}

// NowMs implements modbus.Clock.
func (c *Clock) NowMs() uint32 {
	return uint32(time.Since(c.epoch).Milliseconds())
}
