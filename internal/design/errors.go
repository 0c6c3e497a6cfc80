package design

import (
	"errors"
	"strings"
)

// Format names a supported drawing format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatDXF Format = "dxf"
)

// ErrEmptyDocument is returned when a drawing parses but holds nothing that
// can be cut.
var ErrEmptyDocument = errors.New("no meaningful entities found in drawing")

// ParseError reports a drawing that could not be read at all. Attempts keeps
// the diagnostic of every decoding strategy that was tried.
type ParseError struct {
	Format   Format
	Attempts []string
}

func (e *ParseError) Error() string {
	msg := "could not parse " + strings.ToUpper(string(e.Format)) + " file"
	if len(e.Attempts) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(e.Attempts, "; ")
}

// AnalysisError is returned by the analyzer entry points.
type AnalysisError struct {
	Format Format
	Err    error
}

func (e *AnalysisError) Error() string {
	return strings.ToUpper(string(e.Format)) + " analysis failed: " + e.Err.Error()
}

func (e *AnalysisError) Unwrap() error { return e.Err }
