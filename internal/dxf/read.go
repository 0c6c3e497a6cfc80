// Package dxf reads the tagged-pair container format used by CAD drawings
// (DXF) in both its ASCII and binary forms.
package dxf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmpty is returned for zero-length input.
var ErrEmpty = errors.New("empty file content")

// Attempt records why one decoding strategy failed.
type Attempt struct {
	Strategy string
	Err      error
}

// DecodeError is returned when every decoding strategy failed.
type DecodeError struct {
	Attempts []Attempt
}

func (e *DecodeError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
	}
	return "dxf: could not read drawing (" + strings.Join(parts, "; ") + ")"
}

// Unwrap exposes the individual strategy errors to errors.Is / errors.As.
func (e *DecodeError) Unwrap() []error {
	out := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Err)
	}
	return out
}

type strategy struct {
	name string
	open func([]byte) (scanner, error)
}

var textStrategies = []strategy{
	{name: "utf-8", open: openUTF8},
	{name: "windows-1252", open: openCP1252},
}

var binaryStrategies = []strategy{
	{name: "binary", open: func(b []byte) (scanner, error) { return newBinaryScanner(b), nil }},
}

// Read parses a DXF drawing from raw bytes. Binary files are detected by their
// sentinel; text files are tried as UTF-8 first and Windows-1252 second.
func Read(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	strategies := textStrategies
	if bytes.HasPrefix(data, binarySentinel) {
		strategies = binaryStrategies
	}

	var attempts []Attempt
	for _, st := range strategies {
		sc, err := st.open(data)
		if err == nil {
			var doc *Document
			if doc, err = parse(sc); err == nil {
				return doc, nil
			}
		}
		attempts = append(attempts, Attempt{Strategy: st.name, Err: err})
	}
	return nil, &DecodeError{Attempts: attempts}
}

func openUTF8(data []byte) (scanner, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("invalid UTF-8 at byte %d", invalidUTF8Offset(data))
	}
	return newASCIIScanner(string(data)), nil
}

func openCP1252(data []byte) (scanner, error) {
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, err
	}
	return newASCIIScanner(string(decoded)), nil
}

func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}
