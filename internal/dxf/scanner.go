package dxf

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const maxLineBytes = 1 << 20

// scanner yields tags one at a time and returns io.EOF once the stream is exhausted.
type scanner interface {
	Next() (Tag, error)
}

type asciiScanner struct {
	lines *bufio.Scanner
	line  int
}

func newASCIIScanner(text string) *asciiScanner {
	s := bufio.NewScanner(strings.NewReader(text))
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &asciiScanner{lines: s}
}

func (s *asciiScanner) Next() (Tag, error) {
	codeLine, ok, err := s.readLine()
	if err != nil {
		return Tag{}, err
	}
	if !ok {
		return Tag{}, io.EOF
	}
	// Tolerate blank padding at the very end of a file.
	for strings.TrimSpace(codeLine) == "" {
		codeLine, ok, err = s.readLine()
		if err != nil {
			return Tag{}, err
		}
		if !ok {
			return Tag{}, io.EOF
		}
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeLine))
	if err != nil {
		return Tag{}, fmt.Errorf("line %d: invalid group code %q", s.line, truncate(codeLine, 32))
	}
	value, ok, err := s.readLine()
	if err != nil {
		return Tag{}, err
	}
	if !ok {
		return Tag{}, fmt.Errorf("line %d: group code %d has no value", s.line, code)
	}
	return Tag{Code: code, Value: strings.TrimRight(value, "\r")}, nil
}

func (s *asciiScanner) readLine() (string, bool, error) {
	if !s.lines.Scan() {
		if err := s.lines.Err(); err != nil {
			return "", false, fmt.Errorf("line %d: %w", s.line+1, err)
		}
		return "", false, nil
	}
	s.line++
	return s.lines.Text(), true, nil
}

// binarySentinel opens every binary DXF file (R13 and later).
var binarySentinel = []byte("AutoCAD Binary DXF\r\n\x1a\x00")

type binaryScanner struct {
	data []byte
	pos  int
}

func newBinaryScanner(data []byte) *binaryScanner {
	return &binaryScanner{data: data, pos: len(binarySentinel)}
}

var errShortBinary = errors.New("unexpected end of binary data")

func (s *binaryScanner) Next() (Tag, error) {
	if s.pos >= len(s.data) {
		return Tag{}, io.EOF
	}
	raw, err := s.take(2)
	if err != nil {
		return Tag{}, err
	}
	code := int(binary.LittleEndian.Uint16(raw))
	offset := s.pos - 2

	var value string
	switch kind := binaryValueKind(code); kind {
	case kindString:
		value, err = s.cstring()
	case kindDouble:
		var b []byte
		if b, err = s.take(8); err == nil {
			value = strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)), 'g', -1, 64)
		}
	case kindInt16:
		var b []byte
		if b, err = s.take(2); err == nil {
			value = strconv.Itoa(int(int16(binary.LittleEndian.Uint16(b))))
		}
	case kindInt32:
		var b []byte
		if b, err = s.take(4); err == nil {
			value = strconv.Itoa(int(int32(binary.LittleEndian.Uint32(b))))
		}
	case kindInt64:
		var b []byte
		if b, err = s.take(8); err == nil {
			value = strconv.FormatInt(int64(binary.LittleEndian.Uint64(b)), 10)
		}
	case kindBool:
		var b []byte
		if b, err = s.take(1); err == nil {
			value = strconv.Itoa(int(b[0]))
		}
	case kindChunk:
		var n []byte
		if n, err = s.take(1); err == nil {
			var b []byte
			if b, err = s.take(int(n[0])); err == nil {
				value = fmt.Sprintf("%X", b)
			}
		}
	default:
		return Tag{}, fmt.Errorf("byte %d: unsupported group code %d", offset, code)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("byte %d: group code %d: %w", offset, code, err)
	}
	return Tag{Code: code, Value: value}, nil
}

func (s *binaryScanner) take(n int) ([]byte, error) {
	if s.pos+n > len(s.data) {
		return nil, errShortBinary
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *binaryScanner) cstring() (string, error) {
	for i := s.pos; i < len(s.data); i++ {
		if s.data[i] == 0 {
			v := string(s.data[s.pos:i])
			s.pos = i + 1
			return v, nil
		}
	}
	return "", errShortBinary
}

type valueKind int

const (
	kindUnknown valueKind = iota
	kindString
	kindDouble
	kindInt16
	kindInt32
	kindInt64
	kindBool
	kindChunk
)

// binaryValueKind maps a group code to its binary encoding as listed in the DXF reference.
func binaryValueKind(code int) valueKind {
	switch {
	case code >= 0 && code <= 9:
		return kindString
	case code >= 10 && code <= 59:
		return kindDouble
	case code >= 60 && code <= 79:
		return kindInt16
	case code >= 90 && code <= 99:
		return kindInt32
	case code == 100 || code == 102 || code == 105:
		return kindString
	case code >= 110 && code <= 149:
		return kindDouble
	case code >= 160 && code <= 169:
		return kindInt64
	case code >= 170 && code <= 179:
		return kindInt16
	case code >= 210 && code <= 239:
		return kindDouble
	case code >= 270 && code <= 289:
		return kindInt16
	case code >= 290 && code <= 299:
		return kindBool
	case code >= 300 && code <= 309:
		return kindString
	case code >= 310 && code <= 319:
		return kindChunk
	case code >= 320 && code <= 369:
		return kindString
	case code >= 370 && code <= 389:
		return kindInt16
	case code >= 390 && code <= 399:
		return kindString
	case code >= 400 && code <= 409:
		return kindInt16
	case code >= 410 && code <= 419:
		return kindString
	case code >= 420 && code <= 429:
		return kindInt32
	case code >= 430 && code <= 439:
		return kindString
	case code >= 440 && code <= 459:
		return kindInt32
	case code >= 460 && code <= 469:
		return kindDouble
	case code >= 470 && code <= 481:
		return kindString
	case code == 999:
		return kindString
	case code == 1004:
		return kindChunk
	case code >= 1000 && code <= 1009:
		return kindString
	case code >= 1010 && code <= 1059:
		return kindDouble
	case code >= 1060 && code <= 1070:
		return kindInt16
	case code == 1071:
		return kindInt32
	default:
		return kindUnknown
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
