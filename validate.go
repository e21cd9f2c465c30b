// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

// ValidateRequest runs the slave-side checks of §4.4 against a received
// ADU: CRC, function-code support, and (for everything but Diag) address
// range. It returns OK on success, NoReply if the CRC was bad (the caller
// must emit nothing at all), or one of the ExcXXX codes that the caller
// turns into an exception reply.
func ValidateRequest(a SerADU, banks *RegisterBanks) Code {
	if len(a) < SerHeadSz+1+SerCRCSz || !a.CheckCRC() {
		return NoReply
	}
	fn := a.FnCode()
	if !isSupported(fn) {
		return CodeExcFuncCode
	}
	if fn == Diag {
		return OK
	}
	if len(a) < HeaderSz+SerCRCSz {
		return CodeExcAddrRange
	}
	size, ok := banks.bank(fn)
	if !ok {
		return CodeExcFuncCode
	}
	addr := word(a[OffAddHi], a[OffAddLo])
	switch fn {
	case WrCoil, WrReg:
		if int(addr) >= size {
			return CodeExcAddrRange
		}
	default:
		qty := word(a[OffNbHi], a[OffNbLo])
		if qty == 0 {
			if int(addr) > size {
				return CodeExcAddrRange
			}
			return OK
		}
		if int(addr)+int(qty) > size {
			return CodeExcAddrRange
		}
	}
	return OK
}

// ValidateAnswer runs the master-side checks of §4.4 against a received
// response ADU. It returns OK on success, NoReply on bad CRC,
// ErrException if the slave replied with an exception (the exception code
// itself, carried in the data byte, is not re-parsed by the core; callers
// needing it can read a.ExCode() directly), or CodeExcFuncCode if the
// function code is outside the supported set.
func ValidateAnswer(a SerADU) Code {
	if len(a) < SerHeadSz+1+SerCRCSz || !a.CheckCRC() {
		return NoReply
	}
	if a.IsExc() {
		return ErrException
	}
	if !isSupported(a.FnCode()) {
		return CodeExcFuncCode
	}
	return OK
}
