// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package protocols

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeNMEA decodes one NMEA-0183 sentence into a report.
//
// The sentence must start with '$' and carry exactly one '*' checksum
// delimiter. The checksum is the running XOR of all bytes between '$' and
// '*', compared case-insensitively against the transmitted two-digit hex
// value. GPGGA and GPRMC sentences are expanded field by field; everything
// else is reported as unsupported.
func DecodeNMEA(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") || !strings.Contains(line, "*") {
		return fmt.Sprintf("[NO NMEA] %s\n", line)
	}

	parts := strings.Split(line, "*")
	if len(parts) != 2 {
		return fmt.Sprintf("[FORMATO NMEA INVÁLIDO] %s\n", line)
	}
	sentence, checksumStr := parts[0], parts[1]
	data := sentence[1:]

	var calculated byte
	for i := 0; i < len(data); i++ {
		calculated ^= data[i]
	}

	received, err := strconv.ParseUint(checksumStr, 16, 32)
	if err != nil {
		return fmt.Sprintf("[CHECKSUM INVÁLIDO] %s\n", line)
	}
	if uint64(calculated) != received {
		return fmt.Sprintf("[ERROR CHECKSUM: Calc=%02X, Recib=%02X] %s\n", calculated, received, line)
	}

	fields := strings.Split(data, ",")
	switch fields[0] {
	case "GPGGA":
		if len(fields) < 11 {
			return fmt.Sprintf("[GPGGA MAL FORMADO] %s\n", line)
		}
		return fmt.Sprintf("--- GGA: Global Positioning System Fix Data ---\n"+
			"  Hora (UTC):      %s\n"+
			"  Latitud:         %s %s\n"+
			"  Longitud:        %s %s\n"+
			"  Calidad Fix:     %s (0=inv, 1=GPS, 2=DGPS)\n"+
			"  Satélites:       %s\n"+
			"  HDOP:            %s\n"+
			"  Altitud:         %s %s\n"+
			"--------------------------------------------------\n",
			utcTime(fields[1]),
			fields[2], fields[3],
			fields[4], fields[5],
			fields[6],
			fields[7],
			fields[8],
			fields[9], fields[10])
	case "GPRMC":
		if len(fields) < 10 {
			return fmt.Sprintf("[GPRMC MAL FORMADO] %s\n", line)
		}
		status := fields[2]
		if strings.Contains("AV", status) {
			status = "A=Activo, V=Vacio"
		}
		return fmt.Sprintf("--- RMC: Recommended Minimum Specific GNSS Data ---\n"+
			"  Hora (UTC):      %s\n"+
			"  Estado:          %s\n"+
			"  Velocidad (nudos): %s\n"+
			"  Rumbo:           %s\n"+
			"  Fecha:           %s\n"+
			"--------------------------------------------------\n",
			utcTime(fields[1]),
			status,
			fields[7],
			fields[8],
			rmcDate(fields[9]))
	default:
		return fmt.Sprintf("[TIPO NMEA NO SOPORTADO: %s] %s\n", fields[0], line)
	}
}

// utcTime renders a 6-digit HHMMSS field as HH:MM:SS. Fractional seconds,
// if present, stay attached to the seconds part.
func utcTime(f string) string {
	return seg(f, 0, 2) + ":" + seg(f, 2, 4) + ":" + seg(f, 4, len(f))
}

// rmcDate renders a DDMMYY field as DD/MM/20YY. Two-digit years are assumed
// to be in the 2000s.
func rmcDate(f string) string {
	return seg(f, 0, 2) + "/" + seg(f, 2, 4) + "/20" + seg(f, 4, len(f))
}

// seg is a bounds-clamped substring, so truncated fields degrade instead of
// panicking.
func seg(s string, i, j int) string {
	if i > len(s) {
		i = len(s)
	}
	if j > len(s) {
		j = len(s)
	}
	if i > j {
		return ""
	}
	return s[i:j]
}
