// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package protocols

import (
	"fmt"
	"strings"
	"testing"
)

// ============================================================
// Helpers
// ============================================================

// checksummed appends the correct *XX checksum to a bare sentence body.
func checksummed(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, sum)
}

// ============================================================
// GPGGA / GPRMC decoding
// ============================================================

func TestDecodeNMEA_GPGGA(t *testing.T) {
	line := "$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\n"
	report := DecodeNMEA(line)

	for _, want := range []string{
		"Hora (UTC):      12:35:19",
		"Latitud:         4807.038 N",
		"Longitud:        01131.000 E",
		"Calidad Fix:     1",
		"Satélites:       08",
		"HDOP:            0.9",
		"Altitud:         545.4 M",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("GPGGA report missing %q:\n%s", want, report)
		}
	}
}

func TestDecodeNMEA_GPRMC(t *testing.T) {
	line := checksummed("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")
	report := DecodeNMEA(line)

	for _, want := range []string{
		"Hora (UTC):      12:35:19",
		"Estado:          A=Activo, V=Vacio",
		"Velocidad (nudos): 022.4",
		"Rumbo:           084.4",
		"Fecha:           23/03/2094",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("GPRMC report missing %q:\n%s", want, report)
		}
	}
}

// ============================================================
// Diagnostic reports
// ============================================================

func TestDecodeNMEA_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"no dollar prefix", "GPGGA,123519*47", "[NO NMEA]"},
		{"no checksum delimiter", "$GPGGA,123519", "[NO NMEA]"},
		{"two delimiters", "$GPGGA,12*35*19", "[FORMATO NMEA INVÁLIDO]"},
		{"non-hex checksum", "$GPGGA,123519*ZZ", "[CHECKSUM INVÁLIDO]"},
		{"unsupported sentence", checksummed("GPGSV,3,1,11"), "[TIPO NMEA NO SOPORTADO: GPGSV]"},
		{"short GPGGA", checksummed("GPGGA,123519,4807.038"), "[GPGGA MAL FORMADO]"},
		{"short GPRMC", checksummed("GPRMC,123519,A"), "[GPRMC MAL FORMADO]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := DecodeNMEA(tt.line)
			if !strings.HasPrefix(report, tt.want) {
				t.Errorf("DecodeNMEA(%q) = %q, want prefix %q", tt.line, report, tt.want)
			}
		})
	}
}

func TestDecodeNMEA_ChecksumMismatchReportsValues(t *testing.T) {
	// Body checksum is 0x47; transmit 0x48 instead.
	report := DecodeNMEA("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*48")
	if !strings.HasPrefix(report, "[ERROR CHECKSUM: Calc=47, Recib=48]") {
		t.Errorf("mismatch report = %q", report)
	}
}

// ============================================================
// Checksum properties
// ============================================================

// Flipping any single bit in any data byte must be caught: the decoder may
// classify the damage differently (checksum error, format error, malformed
// sentence) but must never return the clean decoded report.
func TestDecodeNMEA_SingleBitFlipDetected(t *testing.T) {
	corpus := []string{
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
		checksummed("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"),
		checksummed("GPGSV,3,1,11,03,03,111,00,04,15,270,00"),
	}

	for _, sentence := range corpus {
		star := strings.IndexByte(sentence, '*')
		for pos := 1; pos < star; pos++ {
			for bit := 0; bit < 8; bit++ {
				corrupted := []byte(sentence)
				corrupted[pos] ^= 1 << bit
				report := DecodeNMEA(string(corrupted))
				if !strings.HasPrefix(report, "[") {
					t.Fatalf("flip pos=%d bit=%d went undetected: %q", pos, bit, report)
				}
			}
		}
	}
}

func TestDecodeNMEA_Idempotent(t *testing.T) {
	line := "$GPGGA,bogus*00"
	if DecodeNMEA(line) != DecodeNMEA(line) {
		t.Error("decoding the same malformed line twice must produce identical reports")
	}
}
