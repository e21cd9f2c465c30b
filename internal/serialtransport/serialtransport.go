// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package serialtransport adapts a real RS-232/RS-485 serial port to the
// modbus.Transport interface, using the grid-x/serial driver. It is
// deliberately kept outside the core package: the engines never import
// it, only the CLI that wires an engine to a real port does.
package serialtransport

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/grid-x/serial"

	modbus "github.com/elenctl/modrtu"
)

// Config describes one serial port, mirroring the fields the core's
// Config.fixup expects to see filled in already (baud/parity/stopbits are
// not part of the core's own Config, so they live here instead).
type Config struct {
	Device   string
	BaudRate int
	DataBits int
	Parity   string // "N", "E", "O"
	StopBits int

	// TXEN, when set, is called with true just before a frame is sent and
	// false once the transmitter has drained, driving an external RS-485
	// direction-control line (e.g. a GPIO wired to a transceiver's DE pin).
	// Nil disables direction control, matching a txen_pin of 0 or 1 in the
	// core.
	TXEN func(assert bool)
}

// Port is a modbus.Transport backed by an open serial.Port. It buffers
// inbound bytes read from the OS so Available/ReadByte can offer the
// core's non-blocking polling contract over a blocking io.Reader.
type Port struct {
	log *slog.Logger

	mu   sync.Mutex
	port io.ReadWriteCloser
	txen func(assert bool)

	rx     [256]byte
	rxHead int
	rxTail int
}

// Open opens the serial port described by cfg and returns a ready-to-use
// Port. The caller must Close it when done.
func Open(cfg Config, log *slog.Logger) (*Port, error) {
	if log == nil {
		log = slog.Default()
	}
	sc := &serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: cfg.StopBits,
		Parity:   serialParity(cfg.Parity),
	}
	p, err := serial.Open(sc)
	if err != nil {
		return nil, fmt.Errorf("serialtransport: open %s: %w", cfg.Device, err)
	}
	port := &Port{
		log:  log.With("device", cfg.Device),
		port: p,
		txen: cfg.TXEN,
	}
	go port.reader()
	return port, nil
}

func serialParity(p string) string {
	switch p {
	case "E":
		return "E"
	case "O":
		return "O"
	default:
		return "N"
	}
}

// reader continuously drains the OS-level port into the ring buffer so
// Available/ReadByte never block. It exits when a read returns an error
// (typically because the port was closed).
func (p *Port) reader() {
	var b [64]byte
	for {
		n, err := p.port.Read(b[:])
		if n > 0 {
			p.mu.Lock()
			for i := 0; i < n; i++ {
				next := (p.rxTail + 1) % len(p.rx)
				if next == p.rxHead {
					// Ring full: drop the oldest byte rather than block,
					// matching the core's own overflow-by-discard policy.
					p.rxHead = (p.rxHead + 1) % len(p.rx)
				}
				p.rx[p.rxTail] = b[i]
				p.rxTail = next
			}
			p.mu.Unlock()
		}
		if err != nil {
			p.log.Debug("serial read stopped", "err", err)
			return
		}
	}
}

// Available implements modbus.Transport.
func (p *Port) Available() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return uint16((p.rxTail - p.rxHead + len(p.rx)) % len(p.rx))
}

// ReadByte implements modbus.Transport.
func (p *Port) ReadByte() (byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rxHead == p.rxTail {
		return 0, false
	}
	b := p.rx[p.rxHead]
	p.rxHead = (p.rxHead + 1) % len(p.rx)
	return b, true
}

// Write implements modbus.Transport.
func (p *Port) Write(b []byte) error {
	_, err := p.port.Write(b)
	if err != nil {
		return modbus.WrapErrIO(err)
	}
	return nil
}

// Flush implements modbus.Transport. grid-x/serial has no separate TX
// drain primitive; the write above is synchronous from the caller's
// perspective, so there is nothing further to wait for here.
func (p *Port) Flush() error { return nil }

// SetDirection implements modbus.Transport, toggling the configured
// RS-485 direction-control hook, if any.
func (p *Port) SetDirection(tx bool) {
	if p.txen != nil {
		p.txen(tx)
	}
}

// Close releases the underlying port.
func (p *Port) Close() error {
	return p.port.Close()
}
