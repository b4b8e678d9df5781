// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import "strings"

// LineBuffer reassembles decoded text into newline-terminated lines. Chunk
// boundaries carry no meaning: feeding the same byte stream in different
// splits yields the same lines.
type LineBuffer struct {
	pending strings.Builder
}

// Feed appends text and returns every line completed by it, with only the
// line-feed terminator stripped. A CR preceding the LF stays in the line:
// lines plus the pending tail reproduce the input stream byte for byte,
// minus terminators.
func (b *LineBuffer) Feed(text string) []string {
	if text == "" {
		return nil
	}
	b.pending.WriteString(text)
	if !strings.Contains(b.pending.String(), "\n") {
		return nil
	}

	buffered := b.pending.String()
	b.pending.Reset()

	var lines []string
	for {
		i := strings.IndexByte(buffered, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, buffered[:i])
		buffered = buffered[i+1:]
	}
	b.pending.WriteString(buffered)
	return lines
}

// Pending returns the unterminated tail held back so far.
func (b *LineBuffer) Pending() string {
	return b.pending.String()
}

// FlushPending drains the held-back tail, trimmed, for the final write at
// session end. Whitespace-only tails flush to nothing.
func (b *LineBuffer) FlushPending() string {
	tail := strings.TrimSpace(b.pending.String())
	b.pending.Reset()
	return tail
}
