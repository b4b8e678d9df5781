// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

// HistoryCapacity bounds the send-history ring.
const HistoryCapacity = 50

// History is the bounded send history with a recall cursor. Consecutive
// duplicates collapse; the cursor sits one past the newest entry when not
// recalling.
type History struct {
	entries []string
	cursor  int
}

// Add records an outbound command. Empty commands and immediate repeats of
// the newest entry are ignored. Adding resets the recall cursor.
func (h *History) Add(cmd string) {
	if cmd == "" {
		h.cursor = len(h.entries)
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		h.cursor = n
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > HistoryCapacity {
		h.entries = h.entries[1:]
	}
	h.cursor = len(h.entries)
}

// Up moves one step toward the oldest entry and returns it. The second
// return is false when there is nothing to recall.
func (h *History) Up() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Down moves one step toward the newest entry. Stepping past the newest
// returns an empty string with ok=true, clearing the input.
func (h *History) Down() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return "", true
	}
	return h.entries[h.cursor], true
}

// Len returns the number of stored commands.
func (h *History) Len() int {
	return len(h.entries)
}
