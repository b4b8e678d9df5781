// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package serialio

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// Link is a byte-stream transport with bounded reads. A Read returning
// (0, nil) means the timeout elapsed with nothing received; that quiet
// signal is what the Modbus framer keys on.
type Link interface {
	io.Reader
	io.Writer
	io.Closer
	SetReadTimeout(d time.Duration) error
}

// serialLink wraps a local serial port.
type serialLink struct {
	port serial.Port
}

func (s *serialLink) Read(p []byte) (int, error)  { return s.port.Read(p) }
func (s *serialLink) Write(p []byte) (int, error) { return s.port.Write(p) }
func (s *serialLink) Close() error                { return s.port.Close() }

func (s *serialLink) SetReadTimeout(d time.Duration) error {
	return s.port.SetReadTimeout(d)
}

// OpenSerial opens and configures a local serial port. The DTR line is set
// before the first read so devices that gate output on DTR start talking.
func OpenSerial(cfg LinkConfig) (Link, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	if err := port.SetDTR(cfg.DTR); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set DTR on %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(cfg.readTimeout()); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", cfg.Device, err)
	}

	return &serialLink{port: port}, nil
}

// ListPorts enumerates the serial devices visible to the host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}

// wsLink adapts a WebSocket connection to the Link interface. A pump
// goroutine owns all reads from the socket; Read consumes whole binary
// messages from it and re-chunks them, so the read timeout never poisons
// the underlying connection.
type wsLink struct {
	conn    *websocket.Conn
	frames  chan []byte
	readErr chan error
	done    chan struct{}
	once    sync.Once
	buf     []byte
	off     int
	timeout time.Duration
	failed  error
}

func newWSLink(conn *websocket.Conn) *wsLink {
	w := &wsLink{
		conn:    conn,
		frames:  make(chan []byte, 16),
		readErr: make(chan error, 1),
		done:    make(chan struct{}),
		timeout: DefaultReadTimeout,
	}
	go w.pump()
	return w
}

func (w *wsLink) pump() {
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.readErr <- err
			close(w.frames)
			return
		}
		// Text messages carry no payload bytes for us.
		if messageType != websocket.BinaryMessage {
			continue
		}
		if !w.forward(data) {
			return
		}
	}
}

// forward hands one message to the reader. It gives up once the link is
// closed, so a full queue with no consumer cannot strand the pump.
func (w *wsLink) forward(data []byte) bool {
	select {
	case w.frames <- data:
		return true
	case <-w.done:
		return false
	}
}

func (w *wsLink) Read(p []byte) (int, error) {
	if w.failed != nil {
		return 0, w.failed
	}
	if w.off < len(w.buf) {
		n := copy(p, w.buf[w.off:])
		w.off += n
		return n, nil
	}

	select {
	case data, ok := <-w.frames:
		if !ok {
			w.failed = <-w.readErr
			return 0, w.failed
		}
		w.buf = data
		w.off = copy(p, data)
		return w.off, nil
	case <-time.After(w.timeout):
		return 0, nil
	}
}

func (w *wsLink) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsLink) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.conn.Close()
}

func (w *wsLink) SetReadTimeout(d time.Duration) error {
	w.timeout = d
	return nil
}

// OpenWebSocket connects to a remote serial bridge over WebSocket with
// optional HTTP Basic auth.
func OpenWebSocket(wsURL, username, password string, skipSSLVerify bool) (Link, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return newWSLink(conn), nil
}

// GetPassword retrieves the remote-link password from the environment or
// prompts for it without echo.
func GetPassword() (string, error) {
	if pw := os.Getenv("SERIALLOG_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal; fall back to plain line input.
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}
