package design

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// svgShapeTags are the element names counted as cuttable shapes.
var svgShapeTags = []string{"path", "circle", "rect", "polygon", "line"}

// svgDocument is the flat summary of an SVG drawing. SVG input never
// clusters, so no per-entity list is kept.
type svgDocument struct {
	WidthMM  float64
	HeightMM float64
	Counts   map[string]int
	Letters  int
}

func (d svgDocument) Shapes() int {
	n := 0
	for _, tag := range svgShapeTags {
		n += d.Counts[tag]
	}
	return n
}

func (d svgDocument) Paths() int { return d.Counts["path"] }

func parseSVG(data []byte) (svgDocument, error) {
	doc := svgDocument{Counts: map[string]int{}}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	depth := 0
	seenRoot := false
	capturing := false
	var text strings.Builder

	flushText := func() {
		if capturing {
			doc.Letters += utf8.RuneCountInString(text.String())
			text.Reset()
			capturing = false
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return svgDocument{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			flushText()
			if depth == 0 {
				if seenRoot {
					return svgDocument{}, errors.New("junk after document element")
				}
				seenRoot = true
				if err := readSVGDimensions(&doc, t.Attr); err != nil {
					return svgDocument{}, err
				}
			} else {
				doc.Counts[t.Name.Local]++
				if t.Name.Local == "text" {
					capturing = true
				}
			}
			depth++
		case xml.EndElement:
			flushText()
			depth--
		case xml.CharData:
			if capturing {
				text.Write(t)
			}
		}
	}
	if !seenRoot {
		return svgDocument{}, errors.New("no element found")
	}
	return doc, nil
}

// readSVGDimensions applies the root width/height, falling back to the
// viewBox extent when either is missing or zero. viewBox values are taken as-is.
func readSVGDimensions(doc *svgDocument, attrs []xml.Attr) error {
	var width, height, viewBox string
	for _, a := range attrs {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		case "viewBox":
			viewBox = a.Value
		}
	}
	doc.WidthMM = ParseLength(width)
	doc.HeightMM = ParseLength(height)
	if doc.WidthMM != 0 && doc.HeightMM != 0 {
		return nil
	}
	parts := strings.FieldsFunc(viewBox, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(parts) != 4 {
		return nil
	}
	w, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("invalid viewBox width %q", parts[2])
	}
	h, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return fmt.Errorf("invalid viewBox height %q", parts[3])
	}
	doc.WidthMM, doc.HeightMM = w, h
	return nil
}
