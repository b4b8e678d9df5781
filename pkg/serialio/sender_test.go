// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the periodic-send goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// ============================================================
// Outbound sends
// ============================================================

func TestSender_LineEndings(t *testing.T) {
	tests := []struct {
		ending string
		want   string
	}{
		{EndingNone, "AT"},
		{EndingLF, "AT\n"},
		{EndingCR, "AT\r"},
		{EndingCRLF, "AT\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.ending, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewSender(&buf, "utf-8")
			if err := s.Send("AT", tt.ending); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}

	var buf bytes.Buffer
	if err := NewSender(&buf, "utf-8").Send("AT", "vertical tab"); err == nil {
		t.Error("expected error for unknown line ending")
	}
}

func TestSender_Encoding(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(&buf, "latin-1")
	if err := s.Send("é", EndingNone); err != nil {
		t.Fatal(err)
	}
	if got := buf.Bytes(); len(got) != 1 || got[0] != 0xE9 {
		t.Errorf("latin-1 send = % X, want E9", got)
	}
}

func TestSender_SendHex(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(&buf, "utf-8")

	if err := s.SendHex("01 03  00FF"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x01, 0x03, 0x00, 0xFF}) {
		t.Errorf("wrote % X", buf.Bytes())
	}

	for _, bad := range []string{"", "   ", "ABC", "GG"} {
		buf.Reset()
		if err := s.SendHex(bad); err == nil {
			t.Errorf("SendHex(%q): expected error", bad)
		}
		if buf.Len() != 0 {
			t.Errorf("SendHex(%q) wrote % X despite error", bad, buf.Bytes())
		}
	}
}

// ============================================================
// Periodic send
// ============================================================

func TestSender_PeriodicIntervalFloor(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(&buf, "utf-8")
	if _, err := s.StartPeriodic("x", EndingLF, 5*time.Millisecond, nil); err == nil {
		t.Error("expected error for interval below floor")
	}
}

func TestSender_Periodic(t *testing.T) {
	var buf syncBuffer
	s := NewSender(&buf, "utf-8")

	p, err := s.StartPeriodic("ping", EndingLF, MinPeriodicInterval, nil)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(8 * MinPeriodicInterval)
	p.Stop()
	p.Stop() // idempotent

	sent := strings.Count(buf.String(), "ping\n")
	if sent < 2 {
		t.Errorf("got %d periodic sends, want at least 2", sent)
	}
	after := buf.String()
	time.Sleep(3 * MinPeriodicInterval)
	if buf.String() != after {
		t.Error("sends continued after Stop")
	}
}
