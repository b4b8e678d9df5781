// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seriallog/seriallog/pkg/charset"
	"github.com/seriallog/seriallog/pkg/logging"
	"github.com/seriallog/seriallog/pkg/protocols"
	"github.com/seriallog/seriallog/pkg/serialio"
)

var (
	monitorLogPath string
	monitorAppend  bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream received data to stdout until interrupted",
	Long: `Stream the port to stdout, one timestamped line at a time, with an
optional log file. Protocol decoding is a terminal-only feature; monitor is
the raw tap you leave running in a pipe or under a supervisor.

Press Ctrl+C to exit.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().StringVarP(&monitorLogPath, "log", "l", "", "Write received lines to this file")
	monitorCmd.Flags().BoolVar(&monitorAppend, "append", true, "Append to the log file instead of truncating")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	stamp, err := stampSpec()
	if err != nil {
		return err
	}
	decoder, err := charset.NewDecoder(encodingName)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: "info"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	link, connInfo, err := openLink(logger)
	if err != nil {
		return err
	}

	session := serialio.NewSession(link, false, logger)
	writer, err := serialio.NewLogWriter(serialio.LogWriterConfig{
		Encoding: encodingName,
		Stamp:    stamp,
		Protocol: protocols.None,
		Path:     monitorLogPath,
		Append:   monitorAppend,
		Logger:   logger,
	}, session.Logged())
	if err != nil {
		session.Close()
		return err
	}

	fmt.Fprintf(os.Stderr, "SerialLog - Monitor\n")
	fmt.Fprintf(os.Stderr, "Connection: %s\n", connInfo)
	if monitorLogPath != "" {
		fmt.Fprintf(os.Stderr, "Logging to: %s\n", monitorLogPath)
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		session.Close()
	}()

	// Timestamps go at the start of each output line, so a line split
	// across chunks is stamped once.
	atLineStart := true
	printChunk := func(text string) {
		for text != "" {
			if atLineStart {
				fmt.Print(stamp.Now())
				atLineStart = false
			}
			i := strings.IndexByte(text, '\n')
			if i < 0 {
				fmt.Print(text)
				return
			}
			fmt.Print(text[:i+1])
			atLineStart = true
			text = text[i+1:]
		}
	}

	for chunk := range session.Display() {
		printChunk(decoder.Decode(chunk))
	}
	printChunk(decoder.Flush())
	if !atLineStart {
		fmt.Println()
	}

	<-writer.Done()
	return nil
}
