package design

import (
	"errors"
	"fmt"
	"strings"

	"cutquote-backend/internal/dxf"
)

// dxfDrawing is a DXF file reduced to the model-space entities that matter
// for cutting, plus the bookkeeping reported by InspectDXF.
type dxfDrawing struct {
	Version    string
	UnitCode   int
	UnitFactor float64
	Entities   []Entity
	TypeCounts map[string]int
	Dropped    map[string]int
}

func parseDXF(data []byte) (dxfDrawing, error) {
	doc, err := dxf.Read(data)
	if err != nil {
		return dxfDrawing{}, dxfParseError(err)
	}

	out := dxfDrawing{
		Version:    doc.Version(),
		UnitCode:   doc.InsUnits(),
		TypeCounts: map[string]int{},
		Dropped:    map[string]int{},
	}
	out.UnitFactor = DXFUnitFactor(out.UnitCode)

	for _, raw := range doc.Entities {
		if raw.InPaperSpace() {
			continue
		}
		out.TypeCounts[raw.Type]++
		e, ok := convertEntity(raw)
		if !ok {
			out.Dropped[raw.Type]++
			continue
		}
		out.Entities = append(out.Entities, e)
	}
	if len(out.Entities) == 0 {
		return out, ErrEmptyDocument
	}
	return out, nil
}

func dxfParseError(err error) *ParseError {
	pe := &ParseError{Format: FormatDXF}
	var de *dxf.DecodeError
	switch {
	case errors.As(err, &de):
		for _, a := range de.Attempts {
			pe.Attempts = append(pe.Attempts, fmt.Sprintf("%s: %v", a.Strategy, a.Err))
		}
	default:
		pe.Attempts = []string{err.Error()}
	}
	return pe
}

// convertEntity maps a raw DXF record onto the entity variants. Types that
// do not affect cutting report false.
func convertEntity(raw dxf.Entity) (Entity, bool) {
	at := func(x, y int) Point {
		return Point{X: raw.Float(x, 0), Y: raw.Float(y, 0)}
	}
	switch raw.Type {
	case "LINE":
		return Line{Start: at(10, 20), End: at(11, 21)}, true
	case "LWPOLYLINE":
		return Polyline{Vertices: pairsToPoints(raw.Pairs(10, 20)), Lightweight: true}, true
	case "POLYLINE":
		p := Polyline{}
		for _, v := range raw.Vertices {
			if _, ok := v.First(10); !ok {
				continue
			}
			p.Vertices = append(p.Vertices, Point{X: v.Float(10, 0), Y: v.Float(20, 0)})
		}
		return p, true
	case "CIRCLE":
		return Circle{Center: at(10, 20), Radius: raw.Float(40, 0)}, true
	case "ARC":
		return Arc{
			Center:     at(10, 20),
			Radius:     raw.Float(40, 0),
			StartAngle: raw.Float(50, 0),
			EndAngle:   raw.Float(51, 360),
		}, true
	case "ELLIPSE":
		return Ellipse{Center: at(10, 20), MajorAxis: at(11, 21), Ratio: raw.Float(40, 1)}, true
	case "SPLINE":
		return Spline{ControlPoints: pairsToPoints(raw.Pairs(10, 20))}, true
	case "INSERT":
		var block string
		if t, ok := raw.First(2); ok {
			block = t.Text()
		}
		return Insert{At: at(10, 20), Block: block}, true
	case "TEXT":
		var content string
		if t, ok := raw.First(1); ok {
			content = t.Value
		}
		return Text{At: at(10, 20), Height: raw.Float(40, 0), Content: content}, true
	case "MTEXT":
		var b strings.Builder
		for _, t := range raw.All(3) {
			b.WriteString(t.Value)
		}
		for _, t := range raw.All(1) {
			b.WriteString(t.Value)
		}
		return Text{At: at(10, 20), Height: raw.Float(40, 0), Content: b.String(), Multiline: true}, true
	}
	return nil, false
}

func pairsToPoints(pairs [][2]float64) []Point {
	pts := make([]Point, 0, len(pairs))
	for _, p := range pairs {
		pts = append(pts, Point{X: p[0], Y: p[1]})
	}
	return pts
}
