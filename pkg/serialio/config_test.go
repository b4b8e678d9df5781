// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"testing"

	"go.bug.st/serial"
)

// ============================================================
// Link configuration
// ============================================================

func TestLinkConfig_Mode(t *testing.T) {
	cfg := LinkConfig{
		Device:   "/dev/ttyUSB0",
		Baud:     115200,
		DataBits: 8,
		StopBits: "2",
		Parity:   "even",
	}
	mode, err := cfg.Mode()
	if err != nil {
		t.Fatal(err)
	}
	if mode.BaudRate != 115200 || mode.DataBits != 8 {
		t.Errorf("mode = %+v", mode)
	}
	if mode.StopBits != serial.TwoStopBits {
		t.Errorf("stop bits = %v", mode.StopBits)
	}
	if mode.Parity != serial.EvenParity {
		t.Errorf("parity = %v", mode.Parity)
	}
}

func TestLinkConfig_ModeRejects(t *testing.T) {
	base := LinkConfig{Device: "/dev/ttyUSB0", Baud: 9600, DataBits: 8}

	tests := []struct {
		name   string
		mutate func(*LinkConfig)
	}{
		{"no device", func(c *LinkConfig) { c.Device = "" }},
		{"zero baud", func(c *LinkConfig) { c.Baud = 0 }},
		{"data bits low", func(c *LinkConfig) { c.DataBits = 4 }},
		{"data bits high", func(c *LinkConfig) { c.DataBits = 9 }},
		{"bad stop bits", func(c *LinkConfig) { c.StopBits = "3" }},
		{"bad parity", func(c *LinkConfig) { c.Parity = "strong" }},
		{"bad handshake", func(c *LinkConfig) { c.Handshake = "dtr/dsr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if _, err := cfg.Mode(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLinkConfig_Defaults(t *testing.T) {
	cfg := LinkConfig{Device: "/dev/ttyUSB0", Baud: 9600, DataBits: 8}
	mode, err := cfg.Mode()
	if err != nil {
		t.Fatal(err)
	}
	if mode.StopBits != serial.OneStopBit || mode.Parity != serial.NoParity {
		t.Errorf("defaults: %+v", mode)
	}
	if cfg.readTimeout() != DefaultReadTimeout {
		t.Errorf("default read timeout = %v", cfg.readTimeout())
	}
}
