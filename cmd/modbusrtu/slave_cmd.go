// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	modbus "github.com/elenctl/modrtu"
	"github.com/elenctl/modrtu/internal/rtuconfig"
	"github.com/elenctl/modrtu/internal/rtulog"
	"github.com/elenctl/modrtu/internal/serialtransport"
	"github.com/elenctl/modrtu/internal/sysclock"
)

func newSlaveCmd() *cobra.Command {
	var bankSize int

	cmd := &cobra.Command{
		Use:   "slave",
		Short: "Serve requests against an in-memory register image until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rtuconfig.Load(configFile)
			if err != nil {
				return err
			}
			setupLogging(cfg.Log.Level)
			log := rtulog.New("slave", cfg.ID)

			port, err := serialtransport.Open(serialtransport.Config{
				Device:   cfg.Serial.Device,
				BaudRate: cfg.Serial.BaudRate,
				DataBits: cfg.Serial.DataBits,
				Parity:   cfg.Serial.Parity,
				StopBits: cfg.Serial.StopBits,
			}, nil)
			if err != nil {
				return err
			}
			defer port.Close()

			var eng modbus.SlaveEngine
			eng.TimeoutMs = cfg.Engine.TimeoutMs
			eng.TxenOvertime = cfg.Engine.TxenOvertime
			eng.T35Ms = cfg.Engine.T35Ms
			eng.Init(cfg.ID, port, sysclock.New())

			banks := &modbus.RegisterBanks{
				DO: make([]bool, bankSize),
				DI: make([]bool, bankSize),
				AO: make([]uint16, bankSize),
				AI: make([]uint16, bankSize),
			}

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			for {
				select {
				case <-sig:
					return nil
				default:
				}
				n, code := eng.Poll(banks)
				rtulog.SlavePoll(log, n, code)
				time.Sleep(time.Millisecond)
			}
		},
	}
	cmd.Flags().IntVar(&bankSize, "bank-size", 128, "size of each register bank")
	return cmd
}
