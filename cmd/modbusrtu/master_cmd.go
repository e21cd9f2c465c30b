// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	modbus "github.com/elenctl/modrtu"
	"github.com/elenctl/modrtu/internal/rtuconfig"
	"github.com/elenctl/modrtu/internal/rtulog"
	"github.com/elenctl/modrtu/internal/serialtransport"
	"github.com/elenctl/modrtu/internal/sysclock"
)

func newMasterCmd() *cobra.Command {
	var slave uint8
	var fn uint8
	var addr, qty uint16

	cmd := &cobra.Command{
		Use:   "master",
		Short: "Issue a single query against a slave and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rtuconfig.Load(configFile)
			if err != nil {
				return err
			}
			setupLogging(cfg.Log.Level)
			log := rtulog.New("master", 0)

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

			var eng modbus.MasterEngine
			eng.TimeoutMs = cfg.Engine.TimeoutMs
			eng.TxenOvertime = cfg.Engine.TxenOvertime
			eng.T35Ms = cfg.Engine.T35Ms
			eng.Init(port, sysclock.New())

			image := make([]uint16, qty)
			if qty == 0 {
				image = make([]uint16, 1)
			}
			t := modbus.Telegram{Slave: slave, Func: modbus.FnCode(fn), Addr: addr, Qty: qty, Value: image[0]}
			rtulog.Query(log, t)
			if code := eng.Query(t, image); code != modbus.OK {
				return fmt.Errorf("query: %w", code)
			}

			for eng.State() == modbus.WaitingReply {
				n, code := eng.Poll()
				rtulog.MasterPoll(log, n, code)
				if code != modbus.OK {
					break
				}
				time.Sleep(time.Millisecond)
			}
			if eng.LastError() != modbus.OK {
				return fmt.Errorf("master: %w", eng.LastError())
			}
			fmt.Println(image)
			return nil
		},
	}
	cmd.Flags().Uint8Var(&slave, "slave", 1, "target slave id (0 = broadcast)")
	cmd.Flags().Uint8Var(&fn, "func", uint8(modbus.RdHoldingRegs), "function code")
	cmd.Flags().Uint16Var(&addr, "addr", 0, "starting address")
	cmd.Flags().Uint16Var(&qty, "qty", 1, "quantity of coils/registers")
	return cmd
}
