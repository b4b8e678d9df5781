// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

// Package serialio is the streaming core: link abstraction over serial and
// WebSocket transports, the background read loop, line reassembly, the
// log/decode writer, and the outbound sender.
package serialio

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Selectable values for the framed link parameters.
var (
	StopBitValues   = []string{"1", "1.5", "2"}
	ParityValues    = []string{"none", "even", "odd", "mark", "space"}
	HandshakeValues = []string{"none", "rts/cts", "xon/xoff"}
)

// DefaultReadTimeout bounds every blocking read so the loop can observe
// close requests. It doubles as the Modbus inter-frame quiet interval.
const DefaultReadTimeout = 50 * time.Millisecond

// LinkConfig holds every parameter needed to open a serial link. Validation
// is all-or-nothing: a config that does not map cleanly onto the port layer
// never results in a half-opened port.
type LinkConfig struct {
	Device      string
	Baud        int
	DataBits    int
	StopBits    string
	Parity      string
	Handshake   string
	DTR         bool
	ReadTimeout time.Duration
}

// Mode translates the config into a port mode, rejecting out-of-range
// values before anything touches the device.
func (c LinkConfig) Mode() (*serial.Mode, error) {
	if c.Device == "" {
		return nil, fmt.Errorf("no serial device given")
	}
	if c.Baud <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return nil, fmt.Errorf("invalid data bits %d (want 5..8)", c.DataBits)
	}

	mode := &serial.Mode{
		BaudRate: c.Baud,
		DataBits: c.DataBits,
	}

	switch c.StopBits {
	case "1", "":
		mode.StopBits = serial.OneStopBit
	case "1.5":
		mode.StopBits = serial.OnePointFiveStopBits
	case "2":
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("invalid stop bits %q (want 1, 1.5 or 2)", c.StopBits)
	}

	switch c.Parity {
	case "none", "":
		mode.Parity = serial.NoParity
	case "even":
		mode.Parity = serial.EvenParity
	case "odd":
		mode.Parity = serial.OddParity
	case "mark":
		mode.Parity = serial.MarkParity
	case "space":
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("invalid parity %q", c.Parity)
	}

	switch c.Handshake {
	case "none", "", "rts/cts", "xon/xoff":
		// Accepted. The port layer exposes no host-side flow control, so
		// rts/cts and xon/xoff are validated here and reported as not
		// applied by the caller.
	default:
		return nil, fmt.Errorf("invalid handshake %q", c.Handshake)
	}

	return mode, nil
}

// readTimeout returns the configured timeout or the default.
func (c LinkConfig) readTimeout() time.Duration {
	if c.ReadTimeout > 0 {
		return c.ReadTimeout
	}
	return DefaultReadTimeout
}
