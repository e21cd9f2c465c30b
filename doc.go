// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

/*

Package modbus implements the core of a Modbus RTU protocol engine: the
frame codec, the CRC-16/Modbus checksum, the role state machines (master
and slave) and the function-code handlers for read/write coils, discrete
inputs, holding registers, input registers and diagnostics.

The package is built around two passive, non-blocking engines driven by a
caller-owned main loop. On the master side:

	eng := &modbus.MasterEngine{}
	eng.Init(transport, clock)
	img := make([]uint16, 3)
	code := eng.Query(modbus.Telegram{
		Slave: 0x11,
		Func:  modbus.RdHoldingRegs,
		Addr:  0x006b,
		Qty:   3,
	}, img)
	if code != modbus.OK {
		log.Fatal(code)
	}
	for {
		n, code := eng.Poll()
		if n > 0 || code != modbus.OK {
			break
		}
	}

and, symmetrically, on the slave side:

	eng := &modbus.SlaveEngine{}
	eng.Init(0x11, transport, clock)
	banks := modbus.RegisterBanks{AO: make([]uint16, 128)}
	for {
		eng.Poll(&banks)
	}

Neither engine performs I/O beyond the narrow Transport interface it is
given (see Transport), and neither allocates on its hot path: the frame
buffer is a fixed 64-byte array (see FrameBuffer), and register banks are
borrowed slices owned by the application (see RegisterBanks).

Modbus RTU frames a PDU (function code + payload) with a one-byte node
address and a two-byte CRC-16/Modbus trailer, and delimits frames purely by
inter-character silence (no start/end markers). See RxFramer for the two
framing state machines: one for byte-at-a-time/interrupt callers
(PollIRQ), one for callers that only know how many bytes are currently
buffered (Poll).

Modbus over TCP and Modbus ASCII encoding are not implemented by this
package; only Modbus RTU over an asynchronous serial line is in scope.

Modbus Protocol Specs

This package was implemented based on the specifications and guidelines in
the following documents.

 1. Modbus Application Protocol v1.1b
    http://www.modbus.org/docs/Modbus_Application_Protocol_V1_1b.pdf
 2. Modbus over Serial Line v1.02
    http://modbus.org/docs/Modbus_over_serial_line_V1_02.pdf

*/
package modbus
