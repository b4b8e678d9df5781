// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seriallog/seriallog/pkg/serialio"
	"github.com/seriallog/seriallog/pkg/settings"
	"github.com/seriallog/seriallog/pkg/timestamp"
)

var (
	// Serial connection flags
	portName      string
	baudRate      int
	dataBits      int
	stopBits      string
	parity        string
	handshake     string
	noDTR         bool
	encodingName  string
	stampFormat   string
	stampDelim    string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// store holds persisted settings, loaded before every run.
	store *settings.Store
)

var rootCmd = &cobra.Command{
	Use:   "seriallog",
	Short: "Serial Port Terminal and Protocol Decoder",
	Long: `SerialLog - a serial-port terminal with logging and live protocol decoding.

Streams a serial port (or a remote serial bridge over WebSocket), reassembles
lines, timestamps them into a log file, and optionally decodes NMEA-0183,
Modbus-RTU, CAN-ASCII or JSON-line traffic as it arrives.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the SERIALLOG_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Flags you do not pass fall back to the values saved from the last session.`,
	Version:           "2.0.1",
	PersistentPreRunE: loadSettings,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().IntVar(&dataBits, "databits", 8, "Data bits (5-8)")
	rootCmd.PersistentFlags().StringVar(&stopBits, "stopbits", "1", "Stop bits (1, 1.5 or 2)")
	rootCmd.PersistentFlags().StringVar(&parity, "parity", "none", "Parity (none, even, odd, mark, space)")
	rootCmd.PersistentFlags().StringVar(&handshake, "handshake", "none", "Handshake (none, rts/cts, xon/xoff)")
	rootCmd.PersistentFlags().BoolVar(&noDTR, "no-dtr", false, "Do not assert DTR on open")
	rootCmd.PersistentFlags().StringVar(&encodingName, "encoding", "utf-8", "Character encoding (utf-8, ascii, latin-1, cp1252)")
	rootCmd.PersistentFlags().StringVar(&stampFormat, "timestamp", "none", "Timestamp format for logged lines")
	rootCmd.PersistentFlags().StringVar(&stampDelim, "delimiter", "blank", "Delimiter between timestamp and line (blank, komma, semicolon, none)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// loadSettings reads the settings file and fills in every connection flag
// the user did not pass explicitly.
func loadSettings(cmd *cobra.Command, args []string) error {
	var err error
	store, err = settings.Load("")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("port") {
		portName = store.GetString(settings.KeyPort)
	}
	if !flags.Changed("baud") {
		baudRate = store.GetInt(settings.KeyBaud)
	}
	if !flags.Changed("databits") {
		dataBits = store.GetInt(settings.KeyDataBits)
	}
	if !flags.Changed("stopbits") {
		stopBits = store.GetString(settings.KeyStopBits)
	}
	if !flags.Changed("parity") {
		parity = store.GetString(settings.KeyParity)
	}
	if !flags.Changed("handshake") {
		handshake = store.GetString(settings.KeyHandshake)
	}
	if !flags.Changed("no-dtr") {
		noDTR = !store.GetBool(settings.KeyDTR)
	}
	if !flags.Changed("encoding") {
		encodingName = store.GetString(settings.KeyEncoding)
	}
	if !flags.Changed("timestamp") {
		stampFormat = store.GetString(settings.KeyTimestamp)
	}
	if !flags.Changed("delimiter") {
		stampDelim = store.GetString(settings.KeyDelimiter)
	}
	return nil
}

// saveSettings persists the parameters of the session that just ran.
func saveSettings() error {
	store.Set(settings.KeyPort, portName)
	store.Set(settings.KeyBaud, baudRate)
	store.Set(settings.KeyDataBits, dataBits)
	store.Set(settings.KeyStopBits, stopBits)
	store.Set(settings.KeyParity, parity)
	store.Set(settings.KeyHandshake, handshake)
	store.Set(settings.KeyDTR, !noDTR)
	store.Set(settings.KeyEncoding, encodingName)
	store.Set(settings.KeyTimestamp, stampFormat)
	store.Set(settings.KeyDelimiter, stampDelim)
	return store.Save()
}

func linkConfig() serialio.LinkConfig {
	return serialio.LinkConfig{
		Device:    portName,
		Baud:      baudRate,
		DataBits:  dataBits,
		StopBits:  stopBits,
		Parity:    parity,
		Handshake: handshake,
		DTR:       !noDTR,
	}
}

func stampSpec() (timestamp.Spec, error) {
	spec := timestamp.Spec{Format: stampFormat, Delimiter: stampDelim}
	if !spec.Valid() {
		return spec, fmt.Errorf("invalid timestamp format %q or delimiter %q", stampFormat, stampDelim)
	}
	return spec, nil
}

// openLink opens either a serial or WebSocket connection based on flags.
func openLink(logger *zap.Logger) (serialio.Link, string, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = serialio.GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		link, err := serialio.OpenWebSocket(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return link, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		cfg := linkConfig()
		if cfg.Handshake == "rts/cts" || cfg.Handshake == "xon/xoff" {
			// The port layer exposes no host-side flow control.
			logger.Warn("handshake accepted but not applied", zap.String("handshake", cfg.Handshake))
		}
		link, err := serialio.OpenSerial(cfg)
		if err != nil {
			return nil, "", err
		}
		return link, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
