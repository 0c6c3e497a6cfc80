package design

import (
	"strconv"
	"strings"
	"unicode"
)

// pxFactor is the millimetre size of one CSS pixel at 96 dpi. It is also the
// factor applied to unitless or unrecognised SVG lengths.
const pxFactor = 0.2646

var svgUnitFactors = map[string]float64{
	"mm": 1,
	"cm": 10,
	"m":  1000,
	"in": 25.4,
	"pt": 0.3528,
	"px": pxFactor,
}

// SVGUnitFactor returns the millimetre factor of an SVG length suffix.
func SVGUnitFactor(unit string) float64 {
	if f, ok := svgUnitFactors[strings.ToLower(strings.TrimSpace(unit))]; ok {
		return f
	}
	return pxFactor
}

// ToMillimeters converts value expressed in unit to millimetres.
func ToMillimeters(value float64, unit string) float64 {
	return value * SVGUnitFactor(unit)
}

// ParseLength converts an SVG length such as "210mm", "8.5in" or "300" to
// millimetres. Strings that do not start with a number yield 0.
func ParseLength(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	rest := strings.TrimLeft(s[end:], " \t\r\n")
	unitEnd := strings.IndexFunc(rest, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if unitEnd < 0 {
		unitEnd = len(rest)
	}
	return ToMillimeters(value, rest[:unitEnd])
}

// DXF $INSUNITS codes.
const (
	UnitsUnitless    = 0
	UnitsInches      = 1
	UnitsFeet        = 2
	UnitsMillimeters = 4
	UnitsCentimeters = 5
	UnitsMeters      = 6
)

var dxfUnitFactors = map[int]float64{
	UnitsUnitless:    1.0,
	UnitsInches:      25.4,
	UnitsFeet:        304.8,
	UnitsMillimeters: 1.0,
	UnitsCentimeters: 10.0,
	UnitsMeters:      1000.0,
}

// DXFUnitFactor returns the millimetre factor for a DXF $INSUNITS code.
// Unknown codes are treated as millimetres.
func DXFUnitFactor(code int) float64 {
	if f, ok := dxfUnitFactors[code]; ok {
		return f
	}
	return 1.0
}
