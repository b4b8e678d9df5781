// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seriallog/seriallog/pkg/logging"
	"github.com/seriallog/seriallog/pkg/protocols"
	"github.com/seriallog/seriallog/pkg/serialio"
	"github.com/seriallog/seriallog/pkg/settings"
)

var (
	terminalLogPath  string
	terminalAppend   bool
	terminalProtocol string
	terminalRepeatMs int
)

var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Interactive terminal with logging and protocol decoding",
	Long: `Full-screen serial terminal: live raw view, command input with history,
hex and control-character display, periodic send, log-to-file, and live
decoding of NMEA-0183, Modbus-RTU, CAN-ASCII or JSON-line traffic.

Key bindings:
  enter    send input            up/down  recall history
  ctrl+t   send input as hex     ctrl+e   cycle line ending
  ctrl+x   toggle hex view       ctrl+r   toggle control characters
  ctrl+p   toggle periodic send  ctrl+l   clear views
  ctrl+c   quit`,
	RunE: runTerminal,
}

func init() {
	rootCmd.AddCommand(terminalCmd)
	terminalCmd.Flags().StringVarP(&terminalLogPath, "log", "l", "", "Write received lines to this file")
	terminalCmd.Flags().BoolVar(&terminalAppend, "append", true, "Append to the log file instead of truncating")
	terminalCmd.Flags().StringVar(&terminalProtocol, "protocol", "none",
		fmt.Sprintf("Protocol decoder (%v)", protocols.Names()))
	terminalCmd.Flags().IntVar(&terminalRepeatMs, "repeat-ms", 1000,
		"Interval for periodic send (ctrl+p), in milliseconds")
}

// repeatInterval validates the periodic-send interval flag.
func repeatInterval(ms int) (time.Duration, error) {
	d := time.Duration(ms) * time.Millisecond
	if d < serialio.MinPeriodicInterval {
		return 0, fmt.Errorf("repeat interval %dms below minimum %v", ms, serialio.MinPeriodicInterval)
	}
	return d, nil
}

func runTerminal(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("protocol") {
		terminalProtocol = store.GetString(settings.KeyProtocol)
	}
	if !cmd.Flags().Changed("log") && terminalLogPath == "" {
		terminalLogPath = store.GetString(settings.KeyLogPath)
	}
	if !cmd.Flags().Changed("append") {
		terminalAppend = store.GetBool(settings.KeyLogAppend)
	}

	proto, err := protocols.Parse(terminalProtocol)
	if err != nil {
		return err
	}
	repeat, err := repeatInterval(terminalRepeatMs)
	if err != nil {
		return err
	}
	stamp, err := stampSpec()
	if err != nil {
		return err
	}

	// Diagnostics go to a file; stderr belongs to the alternate screen.
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = os.TempDir()
	}
	logger, err := logging.New(logging.Options{
		Level: "info",
		File:  filepath.Join(cache, "seriallog", "seriallog.log"),
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	link, connInfo, err := openLink(logger)
	if err != nil {
		return err
	}

	session := serialio.NewSession(link, proto.FrameDelimited(), logger)
	writer, err := serialio.NewLogWriter(serialio.LogWriterConfig{
		Encoding: encodingName,
		Stamp:    stamp,
		Protocol: proto,
		Path:     terminalLogPath,
		Append:   terminalAppend,
		Logger:   logger,
	}, session.Logged())
	if err != nil {
		session.Close()
		return err
	}

	m, err := newTerminalModel(session, writer, proto, connInfo, encodingName,
		store.GetString(settings.KeyLineEnding), store.GetBool(settings.KeyHexView), repeat, logger)
	if err != nil {
		session.Close()
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	session.Close()
	// The model stopped consuming reports; drain so the writer can finish.
	for range writer.Reports() {
	}
	<-writer.Done()
	if err != nil {
		return err
	}

	if fm, ok := final.(terminalModel); ok {
		store.Set(settings.KeyProtocol, proto.String())
		store.Set(settings.KeyLogPath, terminalLogPath)
		store.Set(settings.KeyLogAppend, terminalAppend)
		store.Set(settings.KeyLineEnding, fm.lineEnding)
		store.Set(settings.KeyHexView, fm.hexView)
		if err := saveSettings(); err != nil {
			logger.Warn("could not save settings", zap.Error(err))
		}
	}
	return nil
}
