// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Command modbusrtu drives a MasterEngine or a SlaveEngine against a real
// serial port, for manual testing and as a reference for how the ambient
// adapters (internal/serialtransport, internal/sysclock, internal/rtuconfig)
// wire up around the core.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "modbusrtu",
		Short: "Modbus RTU master/slave reference CLI",
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	root.AddCommand(newMasterCmd(), newSlaveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}
