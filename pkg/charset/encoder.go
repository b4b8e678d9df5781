// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

package charset

import "golang.org/x/text/encoding"

// Encode converts outbound text to bytes in the named encoding. Runes the
// target encoding cannot represent are substituted, never dropped.
func Encode(name, text string) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	e := encoding.ReplaceUnsupported(enc.NewEncoder())
	return e.Bytes([]byte(text))
}
