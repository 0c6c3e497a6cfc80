package dxf

import (
	"strconv"
	"strings"
)

// Tag is a single group code / value pair from a DXF stream.
type Tag struct {
	Code  int
	Value string
}

// Float parses the tag value as a float, returning 0 when it is not numeric.
func (t Tag) Float() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(t.Value), 64)
	if err != nil {
		return 0
	}
	return v
}

// Int parses the tag value as an integer, returning 0 when it is not numeric.
func (t Tag) Int() int {
	raw := strings.TrimSpace(t.Value)
	v, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return v
}

// Text returns the value with surrounding whitespace removed.
func (t Tag) Text() string {
	return strings.TrimSpace(t.Value)
}

func (t Tag) is(code int, value string) bool {
	return t.Code == code && strings.EqualFold(t.Text(), value)
}
