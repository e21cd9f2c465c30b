// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package modbus

import "github.com/npat-efault/gohacks/crc16"

// SerADU is a byte-slice holding a Modbus serial ADU: one node-address
// byte, the PDU, and a two-byte CRC-16/Modbus trailer.
type SerADU []byte

func (a SerADU) Node() uint8 { return a[OffID] }

func (a SerADU) IsExc() bool { return a[OffFunc]&ExcFlag != 0 }

func (a SerADU) ExCode() ExCode { return ExCode(a[SerHeadSz+1]) }

func (a SerADU) FnCode() FnCode { return FnCode(a[OffFunc] & ^ExcFlag) }

func (a SerADU) PDU() PDU { return PDU(a[SerHeadSz : len(a)-SerCRCSz]) }

// CRC returns the CRC carried by the ADU, as transmitted (low byte
// first).
func (a SerADU) CRC() uint16 {
	l := len(a)
	return uint16(a[l-2]) | uint16(a[l-1])<<8
}

// crc16Compute calculates the CRC-16/Modbus checksum over b: polynomial
// 0xA001, initial value 0xFFFF, no final XOR. The library already returns
// it in the register order that, written low-byte-then-high-byte, matches
// the wire convention, so no separate swap step is needed here.
func crc16Compute(b []byte) uint16 {
	return crc16.Checksum(crc16.Modbus, b)
}

// CheckCRC reports whether the CRC carried by the ADU matches the one
// computed over everything preceding it.
func (a SerADU) CheckCRC() bool {
	if len(a) < SerCRCSz {
		return false
	}
	return a.CRC() == crc16Compute(a[:len(a)-SerCRCSz])
}

// SerAddCRC appends the CRC-16/Modbus trailer to b, low byte first, and
// returns the result as a SerADU.
func SerAddCRC(b []byte) SerADU {
	crc := crc16Compute(b)
	b = append(b, byte(crc), byte(crc>>8))
	return SerADU(b)
}
