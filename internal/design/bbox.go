package design

import (
	"math"
	"unicode/utf8"
)

const (
	// MaterialityMM is the extent below which a box is too small to cut.
	MaterialityMM = 0.1

	insertBlockSize   = 20.0
	defaultTextHeight = 3.0
	textWidthRatio    = 0.7
	emptyTextChars    = 3
)

// BoundingBox is an axis-aligned box in millimetres.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

func (b BoundingBox) Center() Point {
	return Point{X: b.MinX + b.Width()/2, Y: b.MinY + b.Height()/2}
}

// Union returns the smallest box containing both.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, o.MinX),
		MinY: math.Min(b.MinY, o.MinY),
		MaxX: math.Max(b.MaxX, o.MaxX),
		MaxY: math.Max(b.MaxY, o.MaxY),
	}
}

// Gap is the larger of the horizontal and vertical separation between two
// boxes; overlapping boxes have a gap of 0.
func (b BoundingBox) Gap(o BoundingBox) float64 {
	h := math.Max(0, math.Max(b.MinX-o.MaxX, o.MinX-b.MaxX))
	v := math.Max(0, math.Max(b.MinY-o.MaxY, o.MinY-b.MaxY))
	return math.Max(h, v)
}

// Material reports whether the box is large enough to take part in spatial
// reasoning. Only boxes under the threshold on both axes are rejected, so
// horizontal and vertical lines survive.
func (b BoundingBox) Material() bool {
	return b.Width() >= MaterialityMM || b.Height() >= MaterialityMM
}

// EntityBox pairs an entity with its box and center in millimetres.
type EntityBox struct {
	Entity Entity
	Box    BoundingBox
	Center Point
}

// NewEntityBox computes the box of e, reporting false when it has none.
func NewEntityBox(e Entity, unitFactor float64) (EntityBox, bool) {
	box, ok := EntityBounds(e, unitFactor)
	if !ok {
		return EntityBox{}, false
	}
	return EntityBox{Entity: e, Box: box, Center: box.Center()}, true
}

// EntityBounds returns the millimetre bounding box of a single entity.
// Coordinates are scaled by unitFactor before the extent is taken.
func EntityBounds(e Entity, unitFactor float64) (BoundingBox, bool) {
	var pts []Point
	switch v := e.(type) {
	case Line:
		pts = []Point{v.Start, v.End}
	case Polyline:
		pts = v.Vertices
	case Circle:
		pts = squareAround(v.Center, v.Radius)
	case Arc:
		// Arcs are boxed as their full circle.
		pts = squareAround(v.Center, v.Radius)
	case Ellipse:
		// Only the major axis x component is used; the minor axis and rotation are ignored.
		pts = squareAround(v.Center, math.Abs(v.MajorAxis.X))
	case Spline:
		pts = v.ControlPoints
	case Insert:
		pts = squareAround(v.At, insertBlockSize/2)
	case Text:
		h := v.Height
		if h == 0 {
			h = defaultTextHeight
		}
		chars := utf8.RuneCountInString(v.Content)
		if chars == 0 {
			chars = emptyTextChars
		}
		w := h * textWidthRatio * float64(chars)
		pts = []Point{v.At, {X: v.At.X + w, Y: v.At.Y + h}}
	default:
		return BoundingBox{}, false
	}
	return boundsOf(pts, unitFactor)
}

func squareAround(c Point, r float64) []Point {
	return []Point{{X: c.X - r, Y: c.Y - r}, {X: c.X + r, Y: c.Y + r}}
}

func boundsOf(pts []Point, unitFactor float64) (BoundingBox, bool) {
	if len(pts) == 0 {
		return BoundingBox{}, false
	}
	b := BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, p := range pts {
		x, y := p.X*unitFactor, p.Y*unitFactor
		b.MinX = math.Min(b.MinX, x)
		b.MinY = math.Min(b.MinY, y)
		b.MaxX = math.Max(b.MaxX, x)
		b.MaxY = math.Max(b.MaxY, y)
	}
	return b, true
}

// combinedBounds returns the union of every member box.
func combinedBounds(members []EntityBox) (BoundingBox, bool) {
	if len(members) == 0 {
		return BoundingBox{}, false
	}
	b := members[0].Box
	for _, m := range members[1:] {
		b = b.Union(m.Box)
	}
	return b, true
}
