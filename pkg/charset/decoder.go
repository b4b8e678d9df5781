// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2025 SerialLog contributors

// Package charset converts raw serial bytes to text and back for a small,
// fixed set of encodings. Decoding is incremental: a multi-byte character
// split across two read chunks decodes correctly once both chunks arrive,
// and malformed sequences become U+FFFD instead of failing the stream.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Names returns the selectable encoding names in display order.
func Names() []string {
	return []string{"utf-8", "ascii", "latin-1", "cp1252"}
}

// lookup resolves an encoding by its display name.
func lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	case "ascii", "us-ascii":
		return asciiEncoding{}, nil
	case "latin-1", "latin1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Decoder is an incremental byte-stream decoder. Each consumer of the raw
// stream owns its own instance, since display and log paths advance over
// different chunk boundaries.
type Decoder struct {
	tr    transform.Transformer
	carry []byte
	buf   []byte
}

// NewDecoder creates a decoder for the named encoding.
func NewDecoder(name string) (*Decoder, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return &Decoder{
		tr:  enc.NewDecoder(),
		buf: make([]byte, 4096),
	}, nil
}

// Decode converts one chunk to text. Any trailing bytes that form an
// incomplete character are carried over to the next call.
func (d *Decoder) Decode(chunk []byte) string {
	var src []byte
	if len(d.carry) > 0 {
		src = append(d.carry, chunk...)
		d.carry = nil
	} else {
		src = chunk
	}

	var out strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := d.tr.Transform(d.buf, src, false)
		out.Write(d.buf[:nDst])
		src = src[nSrc:]

		switch err {
		case nil:
			// All consumed.
		case transform.ErrShortDst:
			continue
		case transform.ErrShortSrc:
			d.carry = append([]byte(nil), src...)
			src = nil
		default:
			// The decoders here substitute rather than fail; skip a byte
			// to guarantee progress if one ever does.
			if nSrc == 0 && len(src) > 0 {
				out.WriteRune('�')
				src = src[1:]
			}
		}
	}
	return out.String()
}

// Flush drains any pending partial character as replacement text and
// resets the decoder. Called once at session end.
func (d *Decoder) Flush() string {
	if len(d.carry) == 0 {
		return ""
	}
	var out strings.Builder
	src := d.carry
	d.carry = nil
	for len(src) > 0 {
		nDst, nSrc, err := d.tr.Transform(d.buf, src, true)
		out.Write(d.buf[:nDst])
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		break
	}
	d.tr.Reset()
	return out.String()
}
