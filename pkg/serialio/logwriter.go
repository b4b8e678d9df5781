// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/seriallog/seriallog/pkg/charset"
	"github.com/seriallog/seriallog/pkg/protocols"
	"github.com/seriallog/seriallog/pkg/timestamp"
)

const reportQueueCap = 256

// LogWriterConfig configures the log/decode consumer of a session.
type LogWriterConfig struct {
	Encoding string
	Stamp    timestamp.Spec
	Protocol protocols.Protocol

	// Path is the log file; empty means decode-only, no file. Append
	// versus truncate is decided here, once, at session start.
	Path   string
	Append bool

	Logger *zap.Logger
}

// LogWriter consumes the session's log queue on its own goroutine: decodes
// bytes to text, reassembles lines, timestamps and writes them to the log
// file, and feeds the selected protocol decoder. Reports closes when the
// input stream ends and everything pending has been flushed.
type LogWriter struct {
	cfg     LogWriterConfig
	log     *zap.Logger
	decoder *charset.Decoder
	lines   LineBuffer
	file    *os.File
	bw      *bufio.Writer
	reports chan string
	done    chan struct{}
}

// NewLogWriter opens the log file (if any) and starts consuming chunks.
// Failing to open the file is fatal here, before any data is lost; write
// errors after that only disable logging for the rest of the session.
func NewLogWriter(cfg LogWriterConfig, chunks <-chan []byte) (*LogWriter, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	decoder, err := charset.NewDecoder(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	w := &LogWriter{
		cfg:     cfg,
		log:     cfg.Logger,
		decoder: decoder,
		reports: make(chan string, reportQueueCap),
		done:    make(chan struct{}),
	}

	if cfg.Path != "" {
		flags := os.O_CREATE | os.O_WRONLY
		if cfg.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		w.file, err = os.OpenFile(cfg.Path, flags, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Path, err)
		}
		w.bw = bufio.NewWriter(w.file)
	}

	go w.run(chunks)
	return w, nil
}

// Reports is the decoded-protocol output stream.
func (w *LogWriter) Reports() <-chan string { return w.reports }

// Done closes once the input stream has been fully drained and flushed.
func (w *LogWriter) Done() <-chan struct{} { return w.done }

func (w *LogWriter) run(chunks <-chan []byte) {
	defer func() {
		w.closeFile()
		close(w.reports)
		close(w.done)
	}()

	for chunk := range chunks {
		if w.cfg.Protocol.FrameDelimited() {
			// Chunk boundaries are frame boundaries; no line reassembly.
			report := protocols.DecodeModbusRTU(chunk)
			w.reports <- report
			// The report carries its own trailing newline.
			w.writeEntry(strings.TrimSuffix(report, "\n"))
			continue
		}

		for _, line := range w.lines.Feed(w.decoder.Decode(chunk)) {
			w.handleLine(line)
		}
	}

	// End of stream: drain the charset carry, then the unterminated tail.
	if !w.cfg.Protocol.FrameDelimited() {
		for _, line := range w.lines.Feed(w.decoder.Flush()) {
			w.handleLine(line)
		}
		if tail := w.lines.FlushPending(); tail != "" {
			w.handleLine(tail)
		}
	}
}

func (w *LogWriter) handleLine(line string) {
	w.writeEntry(line)
	if w.cfg.Protocol != protocols.None {
		if report := w.cfg.Protocol.DecodeLine(line); report != "" {
			w.reports <- report
		}
	}
}

// writeEntry writes one timestamped entry and flushes it, so a crash loses
// at most the line in flight.
func (w *LogWriter) writeEntry(text string) {
	if w.bw == nil {
		return
	}
	if _, err := w.bw.WriteString(w.cfg.Stamp.Now() + text + "\n"); err != nil {
		w.disableFile(err)
		return
	}
	if err := w.bw.Flush(); err != nil {
		w.disableFile(err)
	}
}

// disableFile stops file logging for the rest of the session. The stream
// itself keeps flowing.
func (w *LogWriter) disableFile(err error) {
	w.log.Warn("log file write failed, logging disabled", zap.String("path", w.cfg.Path), zap.Error(err))
	w.file.Close()
	w.file = nil
	w.bw = nil
}

func (w *LogWriter) closeFile() {
	if w.bw != nil {
		if err := w.bw.Flush(); err != nil {
			w.log.Warn("log file flush failed", zap.Error(err))
		}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			w.log.Warn("log file close failed", zap.Error(err))
		}
		w.file = nil
		w.bw = nil
	}
}
