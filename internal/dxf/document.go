package dxf

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Entity is one record from the ENTITIES section: its type name and raw tags.
// POLYLINE entities carry their VERTEX records in Vertices.
type Entity struct {
	Type     string
	Tags     []Tag
	Vertices []Entity
}

// First returns the first tag with the given group code.
func (e Entity) First(code int) (Tag, bool) {
	for _, t := range e.Tags {
		if t.Code == code {
			return t, true
		}
	}
	return Tag{}, false
}

// Float returns the numeric value of the first tag with the code, or def.
func (e Entity) Float(code int, def float64) float64 {
	if t, ok := e.First(code); ok {
		return t.Float()
	}
	return def
}

// Int returns the integer value of the first tag with the code, or def.
func (e Entity) Int(code int, def int) int {
	if t, ok := e.First(code); ok {
		return t.Int()
	}
	return def
}

// All returns every tag with the given group code, in stream order.
func (e Entity) All(code int) []Tag {
	var out []Tag
	for _, t := range e.Tags {
		if t.Code == code {
			out = append(out, t)
		}
	}
	return out
}

// Pairs collects repeated (xCode, yCode) coordinate pairs in stream order.
// A y without a preceding x is ignored.
func (e Entity) Pairs(xCode, yCode int) [][2]float64 {
	var out [][2]float64
	var x float64
	pending := false
	for _, t := range e.Tags {
		switch t.Code {
		case xCode:
			x = t.Float()
			pending = true
		case yCode:
			if pending {
				out = append(out, [2]float64{x, t.Float()})
				pending = false
			}
		}
	}
	return out
}

// InPaperSpace reports whether the entity belongs to a paper-space layout.
func (e Entity) InPaperSpace() bool {
	return e.Int(67, 0) == 1
}

// Document is the subset of a DXF drawing the analyzer consumes.
type Document struct {
	Header   map[string][]Tag
	Entities []Entity
}

// Version returns $ACADVER, or "" when the header does not declare it.
func (d *Document) Version() string {
	if tags := d.Header["$ACADVER"]; len(tags) > 0 {
		return tags[0].Text()
	}
	return ""
}

// InsUnits returns $INSUNITS, or 0 (unitless) when absent.
func (d *Document) InsUnits() int {
	if tags := d.Header["$INSUNITS"]; len(tags) > 0 {
		return tags[0].Int()
	}
	return 0
}

var errNoSections = errors.New("no SECTION found")

// parse walks the tag stream section by section. Sections other than HEADER
// and ENTITIES are skipped.
func parse(s scanner) (*Document, error) {
	doc := &Document{Header: map[string][]Tag{}}
	sections := 0
	var pending *Tag

	next := func() (Tag, error) {
		if pending != nil {
			t := *pending
			pending = nil
			return t, nil
		}
		return s.Next()
	}

	for {
		t, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if t.is(0, "EOF") {
			break
		}
		if t.Code == 999 {
			continue
		}
		if !t.is(0, "SECTION") {
			return nil, fmt.Errorf("expected SECTION, got group %d %q", t.Code, truncate(t.Text(), 32))
		}
		name, err := next()
		if err != nil {
			return nil, fmt.Errorf("section name: %w", err)
		}
		if name.Code != 2 {
			return nil, fmt.Errorf("section without name (group %d)", name.Code)
		}
		sections++

		var body []Tag
		for {
			t, err := next()
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("section %s: missing ENDSEC", name.Text())
			}
			if err != nil {
				return nil, err
			}
			if t.is(0, "ENDSEC") {
				break
			}
			body = append(body, t)
		}

		switch strings.ToUpper(name.Text()) {
		case "HEADER":
			readHeader(doc, body)
		case "ENTITIES":
			doc.Entities = append(doc.Entities, readEntities(body)...)
		}
	}
	if sections == 0 {
		return nil, errNoSections
	}
	return doc, nil
}

func readHeader(doc *Document, body []Tag) {
	var name string
	for _, t := range body {
		if t.Code == 9 {
			name = strings.ToUpper(t.Text())
			doc.Header[name] = nil
			continue
		}
		if name != "" {
			doc.Header[name] = append(doc.Header[name], t)
		}
	}
}

func readEntities(body []Tag) []Entity {
	var raw []Entity
	for _, t := range body {
		if t.Code == 0 {
			raw = append(raw, Entity{Type: strings.ToUpper(t.Text())})
			continue
		}
		if len(raw) > 0 {
			last := &raw[len(raw)-1]
			last.Tags = append(last.Tags, t)
		}
	}

	out := make([]Entity, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		e := raw[i]
		if e.Type != "POLYLINE" {
			out = append(out, e)
			continue
		}
		for i+1 < len(raw) && raw[i+1].Type == "VERTEX" {
			e.Vertices = append(e.Vertices, raw[i+1])
			i++
		}
		if i+1 < len(raw) && raw[i+1].Type == "SEQEND" {
			i++
		}
		out = append(out, e)
	}
	return out
}
