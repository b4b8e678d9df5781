// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"fmt"
	"testing"
)

// ============================================================
// Send history
// ============================================================

func TestHistory_ConsecutiveDedupe(t *testing.T) {
	var h History
	h.Add("AT")
	h.Add("AT")
	h.Add("AT+RST")
	h.Add("AT")
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
}

func TestHistory_EmptyIgnored(t *testing.T) {
	var h History
	h.Add("")
	if h.Len() != 0 {
		t.Errorf("empty command stored")
	}
}

func TestHistory_Capacity(t *testing.T) {
	var h History
	for i := 0; i < HistoryCapacity+10; i++ {
		h.Add(fmt.Sprintf("cmd-%d", i))
	}
	if h.Len() != HistoryCapacity {
		t.Fatalf("len = %d, want %d", h.Len(), HistoryCapacity)
	}
	// Oldest entries must have been evicted.
	got, ok := h.Up()
	if !ok || got != fmt.Sprintf("cmd-%d", HistoryCapacity+9) {
		t.Errorf("newest = %q", got)
	}
}

func TestHistory_Recall(t *testing.T) {
	var h History
	h.Add("one")
	h.Add("two")
	h.Add("three")

	if got, _ := h.Up(); got != "three" {
		t.Errorf("Up = %q, want three", got)
	}
	if got, _ := h.Up(); got != "two" {
		t.Errorf("Up = %q, want two", got)
	}
	if got, _ := h.Up(); got != "one" {
		t.Errorf("Up = %q, want one", got)
	}
	// Clamped at the oldest entry.
	if got, _ := h.Up(); got != "one" {
		t.Errorf("Up past start = %q, want one", got)
	}

	if got, _ := h.Down(); got != "two" {
		t.Errorf("Down = %q, want two", got)
	}
	if got, _ := h.Down(); got != "three" {
		t.Errorf("Down = %q, want three", got)
	}
	// One past the newest clears the input.
	if got, ok := h.Down(); got != "" || !ok {
		t.Errorf("Down past end = (%q, %v), want (\"\", true)", got, ok)
	}
	if _, ok := h.Down(); ok {
		t.Error("Down past cleared input must report nothing")
	}
}

func TestHistory_UpOnEmpty(t *testing.T) {
	var h History
	if _, ok := h.Up(); ok {
		t.Error("Up on empty history must report nothing")
	}
}
