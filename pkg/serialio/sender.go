// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seriallog/seriallog/pkg/charset"
)

// Line-ending names for outbound text.
const (
	EndingNone = "none"
	EndingLF   = "LF"
	EndingCR   = "CR"
	EndingCRLF = "CRLF"
)

// LineEndings returns the selectable line endings in display order.
func LineEndings() []string {
	return []string{EndingNone, EndingLF, EndingCR, EndingCRLF}
}

// MinPeriodicInterval is the floor for periodic sends.
const MinPeriodicInterval = 20 * time.Millisecond

// Sender encodes and writes outbound data. It is a thin layer over the
// link; serializing concurrent Send calls is the caller's business.
type Sender struct {
	w        io.Writer
	encoding string
}

// NewSender creates a sender writing to w in the named encoding.
func NewSender(w io.Writer, encoding string) *Sender {
	return &Sender{w: w, encoding: encoding}
}

// Send appends the line ending, encodes the text and writes it.
func (s *Sender) Send(text, ending string) error {
	switch ending {
	case EndingNone, "":
	case EndingLF:
		text += "\n"
	case EndingCR:
		text += "\r"
	case EndingCRLF:
		text += "\r\n"
	default:
		return fmt.Errorf("invalid line ending %q", ending)
	}

	data, err := charset.Encode(s.encoding, text)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// SendHex writes raw bytes given as hex digits. Whitespace is ignored; an
// odd digit count or a non-hex character rejects the whole input, nothing
// is sent.
func (s *Sender) SendHex(text string) error {
	cleaned := strings.Join(strings.Fields(text), "")
	if cleaned == "" {
		return fmt.Errorf("no hex digits given")
	}
	if len(cleaned)%2 != 0 {
		return fmt.Errorf("odd number of hex digits")
	}
	data, err := hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// Periodic is a running repeated send. Stop is idempotent.
type Periodic struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Stop cancels the repetition and waits for the loop to exit.
func (p *Periodic) Stop() {
	p.once.Do(func() { close(p.stop) })
	<-p.done
}

// StartPeriodic sends text every interval until stopped. Intervals below
// the floor are rejected up front. A failing send logs and ends the loop;
// the next manual send surfaces the link error to the user anyway.
func (s *Sender) StartPeriodic(text, ending string, interval time.Duration, logger *zap.Logger) (*Periodic, error) {
	if interval < MinPeriodicInterval {
		return nil, fmt.Errorf("periodic interval %v below minimum %v", interval, MinPeriodicInterval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Periodic{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				if err := s.Send(text, ending); err != nil {
					logger.Warn("periodic send failed", zap.Error(err))
					return
				}
			}
		}
	}()
	return p, nil
}
