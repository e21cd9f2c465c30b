// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// RegisterBanks groups the four logical data tables a slave exposes. The
// application owns the backing arrays; the slave engine only borrows them
// for the duration of a single Poll call. Address-range checks are plain
// slice-bounds checks against len(DO)/len(DI)/len(AO)/len(AI); see
// RequestValidator.
type RegisterBanks struct {
	DO []bool   // discrete outputs (coils), read-write
	DI []bool   // discrete inputs, read-only
	AO []uint16 // holding registers, read-write
	AI []uint16 // input registers, read-only
}

// bank selects the bank and its size for the given function code. ok is
// false for Diag, which is not bank-addressed at all.
func (r *RegisterBanks) bank(f FnCode) (size int, ok bool) {
	switch f {
	case RdCoils, WrCoil, WrCoils:
		return len(r.DO), true
	case RdInputs:
		return len(r.DI), true
	case RdHoldingRegs, WrReg, WrRegs:
		return len(r.AO), true
	case RdInputRegs:
		return len(r.AI), true
	default:
		return 0, false
	}
}
