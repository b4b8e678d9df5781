// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors
//
// SerialLog - Serial Port Terminal and Protocol Decoder
//
// A serial-port terminal with line logging and live decoding of
// NMEA-0183, Modbus-RTU, CAN-ASCII and JSON-line traffic.

package main

import (
	"os"

	"github.com/seriallog/seriallog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
