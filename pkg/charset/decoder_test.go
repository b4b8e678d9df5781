// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package charset

import (
	"strings"
	"testing"
)

// ============================================================
// Incremental decoding
// ============================================================

// Splitting a valid UTF-8 string at every byte boundary and feeding the two
// halves through the decoder must reproduce the original string.
func TestDecoder_SplitAtEveryBoundary(t *testing.T) {
	const text = "héllo wörld … 你好 €42"
	raw := []byte(text)

	for cut := 0; cut <= len(raw); cut++ {
		d, err := NewDecoder("utf-8")
		if err != nil {
			t.Fatal(err)
		}
		got := d.Decode(raw[:cut]) + d.Decode(raw[cut:]) + d.Flush()
		if got != text {
			t.Fatalf("split at %d: got %q, want %q", cut, got, text)
		}
	}
}

func TestDecoder_ByteAtATime(t *testing.T) {
	const text = "€…ñ"
	d, err := NewDecoder("utf-8")
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	for _, b := range []byte(text) {
		out.WriteString(d.Decode([]byte{b}))
	}
	out.WriteString(d.Flush())
	if out.String() != text {
		t.Errorf("got %q, want %q", out.String(), text)
	}
}

func TestDecoder_MalformedBytesReplaced(t *testing.T) {
	d, err := NewDecoder("utf-8")
	if err != nil {
		t.Fatal(err)
	}
	got := d.Decode([]byte{'a', 0xFF, 'b'})
	if got != "a�b" {
		t.Errorf("got %q, want %q", got, "a�b")
	}
}

func TestDecoder_TruncatedSequenceFlushedAsReplacement(t *testing.T) {
	d, err := NewDecoder("utf-8")
	if err != nil {
		t.Fatal(err)
	}
	// First two bytes of the three-byte € sequence.
	if got := d.Decode([]byte{0xE2, 0x82}); got != "" {
		t.Errorf("partial sequence must be held back, got %q", got)
	}
	if got := d.Flush(); !strings.Contains(got, "�") {
		t.Errorf("flush of truncated sequence = %q, want replacement", got)
	}
}

// ============================================================
// Single-byte encodings
// ============================================================

// ASCII is 7-bit: every high byte is a replacement character, even when
// the bytes would form a valid UTF-8 sequence.
func TestDecoder_ASCII(t *testing.T) {
	d, err := NewDecoder("ascii")
	if err != nil {
		t.Fatal(err)
	}
	// UTF-8 for é.
	if got := d.Decode([]byte{0xC3, 0xA9}); got != "��" {
		t.Errorf("ascii decode of C3 A9 = %q, want two replacements", got)
	}
	if got := d.Decode([]byte("plain")); got != "plain" {
		t.Errorf("ascii decode = %q", got)
	}
	if got := d.Flush(); got != "" {
		t.Errorf("ascii must never carry state, flush = %q", got)
	}
}

func TestEncode_ASCII(t *testing.T) {
	got, err := Encode("ascii", "héllo")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "h?llo" {
		t.Errorf("ascii encode = %q, want %q", got, "h?llo")
	}
}

func TestDecoder_Latin1(t *testing.T) {
	d, err := NewDecoder("latin-1")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Decode([]byte{0xE9, 0xF1}); got != "éñ" {
		t.Errorf("latin-1 decode = %q, want %q", got, "éñ")
	}
	if got := d.Flush(); got != "" {
		t.Errorf("latin-1 must never carry state, flush = %q", got)
	}
}

func TestDecoder_CP1252(t *testing.T) {
	d, err := NewDecoder("cp1252")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Decode([]byte{0x80}); got != "€" {
		t.Errorf("cp1252 0x80 = %q, want €", got)
	}
}

func TestNewDecoder_UnknownEncoding(t *testing.T) {
	if _, err := NewDecoder("ebcdic"); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

// ============================================================
// Outbound encoding
// ============================================================

func TestEncode(t *testing.T) {
	utf8, err := Encode("utf-8", "héllo")
	if err != nil {
		t.Fatal(err)
	}
	if string(utf8) != "héllo" {
		t.Errorf("utf-8 encode = %q", utf8)
	}

	latin1, err := Encode("latin-1", "é")
	if err != nil {
		t.Fatal(err)
	}
	if len(latin1) != 1 || latin1[0] != 0xE9 {
		t.Errorf("latin-1 encode = % X, want E9", latin1)
	}

	if _, err := Encode("ebcdic", "x"); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}
