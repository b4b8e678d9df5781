// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

// Package protocols implements the line and frame decoders selectable in a
// monitoring session: NMEA-0183, Modbus-RTU, CAN-ASCII and JSON-line.
//
// All decoders are pure functions from one input unit to a human-readable
// report. Malformed input never produces an error; it produces a diagnostic
// report string, because decoding failures are data to display, not program
// faults.
package protocols

import "fmt"

// Protocol selects one of the supported wire protocols for a session.
// The zero value means no protocol decoding.
type Protocol int

const (
	None Protocol = iota
	NMEA0183
	ModbusRTU
	CANASCII
	JSONLine
)

var protocolNames = map[Protocol]string{
	None:      "None",
	NMEA0183:  "NMEA-0183",
	ModbusRTU: "Modbus-RTU",
	CANASCII:  "CAN-ASCII",
	JSONLine:  "JSON-line",
}

// Names returns the selectable protocol names in display order.
func Names() []string {
	return []string{"None", "NMEA-0183", "Modbus-RTU", "CAN-ASCII", "JSON-line"}
}

// Parse resolves a protocol by its display name.
func Parse(name string) (Protocol, error) {
	for p, n := range protocolNames {
		if n == name {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown protocol %q", name)
}

func (p Protocol) String() string {
	if n, ok := protocolNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Protocol(%d)", int(p))
}

// FrameDelimited reports whether the protocol is delimited by inter-frame
// silence instead of line feeds. Only Modbus-RTU is; its frames are binary
// and carry no in-band terminator.
func (p Protocol) FrameDelimited() bool {
	return p == ModbusRTU
}

// DecodeLine decodes one textual line. It must not be called for
// frame-delimited protocols; use DecodeModbusRTU with the raw frame instead.
func (p Protocol) DecodeLine(line string) string {
	switch p {
	case NMEA0183:
		return DecodeNMEA(line)
	case CANASCII:
		return DecodeCANASCII(line)
	case JSONLine:
		return DecodeJSONLine(line)
	default:
		return ""
	}
}
