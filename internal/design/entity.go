package design

// Kind identifies an entity variant.
type Kind int

const (
	KindLine Kind = iota + 1
	KindPolyline
	KindCircle
	KindArc
	KindEllipse
	KindSpline
	KindInsert
	KindText
	KindMText
)

var kindNames = map[Kind]string{
	KindLine:     "LINE",
	KindPolyline: "POLYLINE",
	KindCircle:   "CIRCLE",
	KindArc:      "ARC",
	KindEllipse:  "ELLIPSE",
	KindSpline:   "SPLINE",
	KindInsert:   "INSERT",
	KindText:     "TEXT",
	KindMText:    "MTEXT",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// Point is a 2D coordinate in document units.
type Point struct {
	X, Y float64
}

// Entity is one geometric primitive from a parsed drawing. The set of
// implementations is closed; see Line, Polyline, Circle, Arc, Ellipse,
// Spline, Insert and Text.
type Entity interface {
	Kind() Kind
	isEntity()
}

type Line struct {
	Start, End Point
}

// Polyline covers both LWPOLYLINE and the older vertex-list POLYLINE.
type Polyline struct {
	Vertices    []Point
	Lightweight bool
}

type Circle struct {
	Center Point
	Radius float64
}

type Arc struct {
	Center     Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

// Ellipse keeps the major axis as an offset from the center, as DXF stores it.
type Ellipse struct {
	Center    Point
	MajorAxis Point
	Ratio     float64
}

type Spline struct {
	ControlPoints []Point
}

// Insert is a block reference. Block geometry is not resolved.
type Insert struct {
	At    Point
	Block string
}

// Text covers TEXT and MTEXT. Height is zero when the source did not set one.
type Text struct {
	At        Point
	Height    float64
	Content   string
	Multiline bool
}

func (Line) Kind() Kind     { return KindLine }
func (Polyline) Kind() Kind { return KindPolyline }
func (Circle) Kind() Kind   { return KindCircle }
func (Arc) Kind() Kind      { return KindArc }
func (Ellipse) Kind() Kind  { return KindEllipse }
func (Spline) Kind() Kind   { return KindSpline }
func (Insert) Kind() Kind   { return KindInsert }

func (t Text) Kind() Kind {
	if t.Multiline {
		return KindMText
	}
	return KindText
}

func (Line) isEntity()     {}
func (Polyline) isEntity() {}
func (Circle) isEntity()   {}
func (Arc) isEntity()      {}
func (Ellipse) isEntity()  {}
func (Spline) isEntity()   {}
func (Insert) isEntity()   {}
func (Text) isEntity()     {}

// IsText reports whether the entity carries letters rather than cut geometry.
func IsText(e Entity) bool {
	k := e.Kind()
	return k == KindText || k == KindMText
}
