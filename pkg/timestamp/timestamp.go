// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

// Package timestamp renders the per-line timestamps prepended to logged and
// displayed output. A timestamp is a pure function of wall-clock time at the
// moment a line is finalized.
package timestamp

import (
	"fmt"
	"time"
)

// Format names, as presented to the user and stored in settings.
const (
	FormatNone      = "none"
	FormatISO8601   = "ISO 8601"
	FormatDateTimeZ = "Date|Time|Timezone"
	FormatDateTime  = "Date|Time"
	FormatTime      = "Time"
	FormatMJD       = "Mod. Julian Date"
	FormatYearDOY   = "Year|Day of year|Time"
	FormatNumeric   = "yyyy|MM|dd|HH|mm|ss"
)

// Delimiter names separating the timestamp from the line content.
const (
	DelimiterBlank     = "blank"
	DelimiterComma     = "komma"
	DelimiterSemicolon = "semicolon"
	DelimiterNone      = "none"
)

// Formats returns the selectable timestamp formats in display order.
func Formats() []string {
	return []string{
		FormatNone, FormatISO8601, FormatDateTimeZ, FormatDateTime,
		FormatTime, FormatMJD, FormatYearDOY, FormatNumeric,
	}
}

// Delimiters returns the selectable delimiters in display order.
func Delimiters() []string {
	return []string{DelimiterBlank, DelimiterComma, DelimiterSemicolon, DelimiterNone}
}

// Spec pairs a timestamp format with its trailing delimiter.
type Spec struct {
	Format    string
	Delimiter string
}

// Valid reports whether both fields name known variants.
func (s Spec) Valid() bool {
	okF := false
	for _, f := range Formats() {
		if s.Format == f {
			okF = true
		}
	}
	okD := false
	for _, d := range Delimiters() {
		if s.Delimiter == d {
			okD = true
		}
	}
	return okF && okD
}

// Stamp renders the timestamp for t, delimiter included. The "none" format
// renders nothing at all, delimiter included.
func (s Spec) Stamp(t time.Time) string {
	if s.Format == FormatNone {
		return ""
	}

	var stamp string
	switch s.Format {
	case FormatISO8601:
		stamp = t.Format("2006-01-02T15:04:05.000")
	case FormatDateTimeZ:
		stamp = t.Format("2006-01-02 15:04:05.000 MST")
	case FormatDateTime:
		stamp = t.Format("2006-01-02 15:04:05.000")
	case FormatTime:
		stamp = t.Format("15:04:05.000")
	case FormatMJD:
		// Kept verbatim from the original tool, which never implemented it.
		stamp = "No implementado"
	case FormatYearDOY:
		stamp = fmt.Sprintf("%s %03d %s", t.Format("2006"), t.YearDay(), t.Format("15:04:05.000"))
	case FormatNumeric:
		stamp = t.Format("2006 01 02 15 04 05")
	default:
		return ""
	}

	switch s.Delimiter {
	case DelimiterComma:
		return stamp + ","
	case DelimiterSemicolon:
		return stamp + ";"
	case DelimiterNone:
		return stamp
	default:
		return stamp + " "
	}
}

// Now renders the timestamp for the current local time.
func (s Spec) Now() string {
	return s.Stamp(time.Now())
}
