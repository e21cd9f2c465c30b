// Copyright (c) 2015, Nick Patavalis (npat@efault.net).
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can
// be found in the LICENSE file.

// Package rtuconfig loads the YAML configuration document describing one
// engine instance (master or slave), its serial port, and its logging
// level, with github.com/spf13/viper.
package rtuconfig

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration document for cmd/modbusrtu.
type Config struct {
	Role   string       `mapstructure:"role"` // "master" or "slave"
	ID     uint8        `mapstructure:"id"`   // slave id; unused for master
	Serial SerialConfig `mapstructure:"serial"`
	Engine EngineConfig `mapstructure:"engine"`
	Log    LogConfig    `mapstructure:"log"`
}

// SerialConfig describes the physical port.
type SerialConfig struct {
	Device   string `mapstructure:"device"`
	BaudRate int    `mapstructure:"baud_rate"`
	DataBits int    `mapstructure:"data_bits"`
	Parity   string `mapstructure:"parity"`
	StopBits int    `mapstructure:"stop_bits"`
	TxenPin  int    `mapstructure:"txen_pin"`
}

// EngineConfig mirrors modbus.Config.
type EngineConfig struct {
	TimeoutMs    uint32 `mapstructure:"timeout_ms"`
	TxenOvertime int    `mapstructure:"txen_overtime"`
	T35Ms        uint32 `mapstructure:"t35_ms"`
}

// LogConfig selects the slog level.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// Load reads configFile (or the usual search path, if empty) and applies
// defaults for anything left unset, the same way the core's own
// Config.fixup supplies defaults for a zero-valued engine Config.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("modbusrtu")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/modbusrtu/")
		v.AddConfigPath("$HOME/.modbusrtu")
		v.AddConfigPath(".")
	}

	v.SetDefault("serial.baud_rate", 19200)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.parity", "N")
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.txen_pin", 0)
	v.SetDefault("engine.timeout_ms", 1000)
	v.SetDefault("engine.txen_overtime", 0)
	v.SetDefault("engine.t35_ms", 0)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("rtuconfig: read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("rtuconfig: unmarshal: %w", err)
	}
	cfg.Serial.Parity = strings.ToUpper(cfg.Serial.Parity)
	return &cfg, nil
}
