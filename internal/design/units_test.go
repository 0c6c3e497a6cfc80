package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMillimetersIsLinear(t *testing.T) {
	units := map[string]float64{
		"mm": 1, "cm": 10, "m": 1000, "in": 25.4, "pt": 0.3528, "px": 0.2646,
		"": 0.2646, "furlong": 0.2646, "MM": 1,
	}
	for unit, factor := range units {
		for _, v := range []float64{0, 1, 2.5, 123.456, -7} {
			assert.InDelta(t, v*factor, ToMillimeters(v, unit), 1e-9, "unit %q value %v", unit, v)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"210mm", 210},
		{" 21 cm ", 210},
		{"8.5in", 215.9},
		{"100", 26.46},
		{"100px", 26.46},
		{"100%", 26.46},
		{"72pt", 25.4016},
		{"", 0},
		{"auto", 0},
		{"-5mm", 0},
		{"1.2.3mm", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.InDelta(t, c.want, ParseLength(c.in), 1e-9)
		})
	}
}

func TestDXFUnitFactor(t *testing.T) {
	assert.Equal(t, 1.0, DXFUnitFactor(UnitsUnitless))
	assert.Equal(t, 25.4, DXFUnitFactor(UnitsInches))
	assert.Equal(t, 304.8, DXFUnitFactor(UnitsFeet))
	assert.Equal(t, 1.0, DXFUnitFactor(UnitsMillimeters))
	assert.Equal(t, 10.0, DXFUnitFactor(UnitsCentimeters))
	assert.Equal(t, 1000.0, DXFUnitFactor(UnitsMeters))
	assert.Equal(t, 1.0, DXFUnitFactor(3))
	assert.Equal(t, 1.0, DXFUnitFactor(-1))
}
