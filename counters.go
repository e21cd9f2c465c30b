// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

import "sync"

// Counter identifies one of the engine's running counters (§6,
// "Diagnostic/observability surface").
type Counter int

const (
	CntIn Counter = iota
	CntOut
	CntErr

	cntNum = iota
)

// counters holds the engine's in/out/err counters. A mutex guards it so
// diagnostics can be read from a goroutine other than the one driving
// Poll/PollIRQ; the engine itself never contends on it from more than one
// goroutine at a time.
type counters struct {
	mu sync.Mutex
	ca [cntNum]uint64
}

func (c *counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ca = [cntNum]uint64{}
}

func (c *counters) Inc(cnt Counter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ca[cnt]++
}

func (c *counters) Get(cnt Counter) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ca[cnt]
}
