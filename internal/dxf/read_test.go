package dxf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pairs[i])
		b.WriteString("\n")
		b.WriteString(pairs[i+1])
		b.WriteString("\n")
	}
	return b.String()
}

const sampleHeader = "0\nSECTION\n2\nHEADER\n9\n$ACADVER\n1\nAC1027\n9\n$INSUNITS\n70\n4\n0\nENDSEC\n"

func TestReadASCII(t *testing.T) {
	src := sampleHeader +
		"0\nSECTION\n2\nTABLES\n0\nTABLE\n2\nLAYER\n0\nENDTAB\n0\nENDSEC\n" +
		"0\nSECTION\n2\nENTITIES\n" +
		tags("0", "LINE", "8", "0", "10", "0.0", "20", "0.0", "11", "10.5", "21", "4") +
		tags("0", "LWPOLYLINE", "90", "3", "10", "1", "20", "2", "10", "3", "20", "4", "10", "5", "20", "6") +
		tags("0", "POLYLINE", "66", "1",
			"0", "VERTEX", "10", "1", "20", "1",
			"0", "VERTEX", "10", "2", "20", "2",
			"0", "SEQEND") +
		tags("0", "TEXT", "10", "1", "20", "1", "40", "2.5", "1", " Hello ") +
		"0\nENDSEC\n0\nEOF\n"

	doc, err := Read([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, "AC1027", doc.Version())
	assert.Equal(t, 4, doc.InsUnits())
	require.Len(t, doc.Entities, 4)

	line := doc.Entities[0]
	assert.Equal(t, "LINE", line.Type)
	assert.Equal(t, 10.5, line.Float(11, -1))
	assert.Equal(t, -1.0, line.Float(40, -1))

	lw := doc.Entities[1]
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}, {5, 6}}, lw.Pairs(10, 20))

	poly := doc.Entities[2]
	assert.Equal(t, "POLYLINE", poly.Type)
	assert.Len(t, poly.Vertices, 2)

	text := doc.Entities[3]
	tag, ok := text.First(1)
	require.True(t, ok)
	assert.Equal(t, " Hello ", tag.Value)
	assert.Equal(t, "Hello", tag.Text())
}

func TestReadWithoutHeaderDefaultsToUnitless(t *testing.T) {
	src := "0\nSECTION\n2\nENTITIES\n" + tags("0", "CIRCLE", "10", "5", "20", "5", "40", "2") + "0\nENDSEC\n0\nEOF\n"
	doc, err := Read([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.InsUnits())
	assert.Equal(t, "", doc.Version())
	require.Len(t, doc.Entities, 1)
	assert.False(t, doc.Entities[0].InPaperSpace())
}

func TestReadPaperSpaceFlag(t *testing.T) {
	src := "0\nSECTION\n2\nENTITIES\n" + tags("0", "LINE", "67", "1", "10", "0", "20", "0", "11", "1", "21", "1") + "0\nENDSEC\n0\nEOF\n"
	doc, err := Read([]byte(src))
	require.NoError(t, err)
	assert.True(t, doc.Entities[0].InPaperSpace())
}

func TestReadCRLFAndBOM(t *testing.T) {
	src := strings.ReplaceAll("0\nSECTION\n2\nENTITIES\n0\nLINE\n10\n1\n20\n2\n11\n3\n21\n4\n0\nENDSEC\n0\nEOF\n", "\n", "\r\n")
	doc, err := Read(append([]byte{0xEF, 0xBB, 0xBF}, src...))
	require.NoError(t, err)
	require.Len(t, doc.Entities, 1)
	assert.Equal(t, 3.0, doc.Entities[0].Float(11, 0))
}

func TestReadFallsBackToWindows1252(t *testing.T) {
	var b bytes.Buffer
	b.WriteString("0\nSECTION\n2\nENTITIES\n0\nTEXT\n10\n0\n20\n0\n1\n90")
	b.WriteByte(0xB0) // degree sign in cp1252, invalid as UTF-8
	b.WriteString("\n0\nENDSEC\n0\nEOF\n")

	doc, err := Read(b.Bytes())
	require.NoError(t, err)
	tag, ok := doc.Entities[0].First(1)
	require.True(t, ok)
	assert.Equal(t, "90°", tag.Value)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestReadGarbageReportsEveryAttempt(t *testing.T) {
	_, err := Read([]byte("this is not a drawing\nat all\n"))
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Len(t, de.Attempts, 2)
	assert.Equal(t, "utf-8", de.Attempts[0].Strategy)
	assert.Equal(t, "windows-1252", de.Attempts[1].Strategy)
	assert.Contains(t, err.Error(), "invalid group code")
}

func TestReadMissingEndsec(t *testing.T) {
	_, err := Read([]byte("0\nSECTION\n2\nENTITIES\n0\nLINE\n10\n1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing ENDSEC")
}

type binWriter struct{ bytes.Buffer }

func (w *binWriter) code(c int) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(c))
	w.Write(b[:])
}

func (w *binWriter) str(c int, s string) {
	w.code(c)
	w.WriteString(s)
	w.WriteByte(0)
}

func (w *binWriter) float(c int, f float64) {
	w.code(c)
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	w.Write(b[:])
}

func (w *binWriter) int16(c int, v int16) {
	w.code(c)
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	w.Write(b[:])
}

func TestReadBinary(t *testing.T) {
	var w binWriter
	w.Write(binarySentinel)
	w.str(0, "SECTION")
	w.str(2, "HEADER")
	w.str(9, "$INSUNITS")
	w.int16(70, 1)
	w.str(0, "ENDSEC")
	w.str(0, "SECTION")
	w.str(2, "ENTITIES")
	w.str(0, "CIRCLE")
	w.str(8, "0")
	w.float(10, 2.5)
	w.float(20, -1)
	w.float(40, 0.75)
	w.str(0, "ENDSEC")
	w.str(0, "EOF")

	doc, err := Read(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.InsUnits())
	require.Len(t, doc.Entities, 1)
	c := doc.Entities[0]
	assert.Equal(t, "CIRCLE", c.Type)
	assert.Equal(t, 2.5, c.Float(10, 0))
	assert.Equal(t, -1.0, c.Float(20, 0))
	assert.Equal(t, 0.75, c.Float(40, 0))
}

func TestReadBinaryTruncated(t *testing.T) {
	var w binWriter
	w.Write(binarySentinel)
	w.str(0, "SECTION")
	w.str(2, "ENTITIES")
	w.code(10)
	w.Write([]byte{1, 2, 3})

	_, err := Read(w.Bytes())
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Len(t, de.Attempts, 1)
	assert.Equal(t, "binary", de.Attempts[0].Strategy)
}
