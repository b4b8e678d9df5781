// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

// Package settings persists the last-used session parameters across
// restarts, so the tool comes back up the way it was left.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyPort       = "serial.port"
	KeyBaud       = "serial.baud"
	KeyDataBits   = "serial.data_bits"
	KeyStopBits   = "serial.stop_bits"
	KeyParity     = "serial.parity"
	KeyHandshake  = "serial.handshake"
	KeyDTR        = "serial.dtr"
	KeyEncoding   = "terminal.encoding"
	KeyLineEnding = "terminal.line_ending"
	KeyHexView    = "terminal.hex_view"
	KeyProtocol   = "terminal.protocol"
	KeyTimestamp  = "log.timestamp"
	KeyDelimiter  = "log.delimiter"
	KeyLogPath    = "log.path"
	KeyLogAppend  = "log.append"
)

// Store is a viper-backed settings file in the user config directory.
type Store struct {
	v    *viper.Viper
	path string
}

// Load reads the settings file, creating defaults in memory if it does not
// exist yet. dir overrides the location; empty means the user config dir.
func Load(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot locate user config dir: %w", err)
		}
		dir = filepath.Join(base, "seriallog")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading settings: %w", err)
		}
	}

	return &Store{v: v, path: filepath.Join(dir, "config.yaml")}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "")
	v.SetDefault(KeyBaud, 115200)
	v.SetDefault(KeyDataBits, 8)
	v.SetDefault(KeyStopBits, "1")
	v.SetDefault(KeyParity, "none")
	v.SetDefault(KeyHandshake, "none")
	v.SetDefault(KeyDTR, true)
	v.SetDefault(KeyEncoding, "utf-8")
	v.SetDefault(KeyLineEnding, "CRLF")
	v.SetDefault(KeyHexView, false)
	v.SetDefault(KeyProtocol, "none")
	v.SetDefault(KeyTimestamp, "none")
	v.SetDefault(KeyDelimiter, "blank")
	v.SetDefault(KeyLogPath, "")
	v.SetDefault(KeyLogAppend, true)
}

// GetString returns the value for key.
func (s *Store) GetString(key string) string { return s.v.GetString(key) }

// GetInt returns the value for key.
func (s *Store) GetInt(key string) int { return s.v.GetInt(key) }

// GetBool returns the value for key.
func (s *Store) GetBool(key string) bool { return s.v.GetBool(key) }

// Set updates a value in memory. Call Save to persist.
func (s *Store) Set(key string, value any) { s.v.Set(key, value) }

// Save writes the settings file, creating its directory if needed.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create settings dir: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("cannot write settings: %w", err)
	}
	return nil
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }
