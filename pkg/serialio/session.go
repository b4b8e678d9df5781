// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"sync"

	"go.uber.org/zap"
)

// DisconnectMarker is injected into the display stream when the link dies
// mid-session.
const DisconnectMarker = "\n--- ERROR: Puerto serie desconectado ---\n"

const (
	readChunkSize = 128

	displayQueueCap = 1024
	logQueueCap     = 1024
)

// Session owns the background read loop of one open link. Received bytes
// fan out in arrival order to two sinks: the display queue and the log
// queue. Both channels close when the stream ends, whether by Close or by
// link failure; channel close is the only end-of-stream signal.
type Session struct {
	link    Link
	framed  bool
	log     *zap.Logger
	display chan []byte
	logged  chan []byte
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSession starts the read loop. framed selects inter-frame-gap framing
// (Modbus-RTU): bytes accumulate until a read timeout elapses with nothing
// received, then the accumulated buffer is emitted as one chunk.
func NewSession(link Link, framed bool, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		link:    link,
		framed:  framed,
		log:     logger,
		display: make(chan []byte, displayQueueCap),
		logged:  make(chan []byte, logQueueCap),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Display is the raw chunk stream for the live view.
func (s *Session) Display() <-chan []byte { return s.display }

// Logged is the raw chunk stream for the log/decode writer.
func (s *Session) Logged() <-chan []byte { return s.logged }

// Write sends bytes out on the link.
func (s *Session) Write(p []byte) (int, error) {
	return s.link.Write(p)
}

// Close requests shutdown, closes the link and waits for the read loop to
// exit. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.stop)
		if err := s.link.Close(); err != nil {
			s.log.Debug("link close", zap.Error(err))
		}
	})
	<-s.done
}

func (s *Session) closing() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// emit fans one chunk out to both sinks, preserving order. Sends block on
// a full queue rather than drop bytes, but give up once Close is underway.
func (s *Session) emit(chunk []byte) bool {
	logCopy := append([]byte(nil), chunk...)
	select {
	case s.display <- chunk:
	case <-s.stop:
		return false
	}
	select {
	case s.logged <- logCopy:
	case <-s.stop:
		return false
	}
	return true
}

func (s *Session) readLoop() {
	defer func() {
		close(s.display)
		close(s.logged)
		close(s.done)
	}()

	buf := make([]byte, readChunkSize)
	var frame []byte

	for {
		if s.closing() {
			return
		}

		n, err := s.link.Read(buf)

		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			if s.framed {
				frame = append(frame, chunk...)
			} else if !s.emit(chunk) {
				return
			}
		} else if err == nil && s.framed && len(frame) > 0 {
			// Quiet interval: the accumulated bytes are one frame.
			if !s.emit(frame) {
				return
			}
			frame = nil
		}

		if err != nil {
			if s.framed && len(frame) > 0 {
				s.emit(frame)
			}
			if s.closing() {
				return
			}
			s.log.Warn("link read failed", zap.Error(err))
			select {
			case s.display <- []byte(DisconnectMarker):
			case <-s.stop:
			}
			return
		}
	}
}
