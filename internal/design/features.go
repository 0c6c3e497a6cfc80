package design

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Result describes one cuttable job.
type Result struct {
	Name                string  `json:"name"`
	WidthMM             float64 `json:"width_mm"`
	HeightMM            float64 `json:"height_mm"`
	NumShapes           int     `json:"num_shapes"`
	NumLetters          int     `json:"num_letters"`
	ComplexityScore     int     `json:"complexity_score"`
	HasIntricateDetails bool    `json:"has_intricate_details"`
	CuttingTimeMinutes  float64 `json:"cutting_time_minutes"`
	ClusterSize         int     `json:"cluster_size,omitempty"`
}

const (
	defaultJobSize     = 100.0
	defaultJobTime     = 10.0
	defaultComplexity  = 2
	minCuttingMinutes  = 5.0
	maxCuttingMinutes  = 120.0
	densityUnitAreaMM2 = 10000.0
)

// DefaultResult is the placeholder returned when a drawing has no usable
// geometry but should still be priceable.
func DefaultResult(name string) Result {
	return Result{
		Name:               name,
		WidthMM:            defaultJobSize,
		HeightMM:           defaultJobSize,
		NumShapes:          1,
		ComplexityScore:    defaultComplexity,
		CuttingTimeMinutes: defaultJobTime,
	}
}

// JobFeatures is the feature breakdown of one cluster.
type JobFeatures struct {
	Shapes        int
	LineGroups    int
	Letters       int
	TextEntities  int
	WidthMM       float64
	HeightMM      float64
	TotalElements float64
	// Density is elements per 10 000 mm²; informational only.
	Density     float64
	Complexity  int
	Intricate   bool
	CuttingTime float64
}

// Result converts the features into a rounded Result.
func (f JobFeatures) Result(name string, clusterSize int) Result {
	return Result{
		Name:                name,
		WidthMM:             round2(f.WidthMM),
		HeightMM:            round2(f.HeightMM),
		NumShapes:           f.Shapes,
		NumLetters:          f.Letters,
		ComplexityScore:     f.Complexity,
		HasIntricateDetails: f.Intricate,
		CuttingTimeMinutes:  round1(f.CuttingTime),
		ClusterSize:         clusterSize,
	}
}

// ExtractFeatures characterises a cluster of boxed entities. LINE entities
// are grouped by shared endpoints; every other shape entity counts once.
func ExtractFeatures(members []EntityBox) JobFeatures {
	var f JobFeatures
	var lines []Line
	for _, m := range members {
		switch v := m.Entity.(type) {
		case Text:
			if v.Content == "" {
				continue
			}
			f.Letters += CountLetters(v.Content)
			f.TextEntities++
		case Line:
			lines = append(lines, v)
		default:
			f.Shapes++
		}
	}
	f.LineGroups = CountConnectedGroups(lines)
	f.Shapes += f.LineGroups

	f.WidthMM, f.HeightMM = defaultJobSize, defaultJobSize
	if b, ok := combinedBounds(members); ok {
		f.WidthMM, f.HeightMM = b.Width(), b.Height()
	}

	f.TotalElements = float64(f.Shapes) + float64(f.Letters)/10
	area := math.Max(f.WidthMM*f.HeightMM, 1)
	f.Density = f.TotalElements / (area / densityUnitAreaMM2)
	f.Complexity = ElementComplexity(f.TotalElements)
	f.Intricate = f.Complexity >= 4
	f.CuttingTime = ClusterCuttingTime(f.Shapes, f.Letters, f.WidthMM, f.HeightMM)
	return f
}

var formattingCode = regexp.MustCompile(`\\[A-Za-z][^;]*;`)

// CountLetters strips inline formatting codes such as `\fArial;` and counts
// the remaining letters, digits and whitespace.
func CountLetters(s string) int {
	s = formattingCode.ReplaceAllString(strings.TrimSpace(s), "")
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// ShapeComplexity scores an SVG drawing from its shape and path counts.
func ShapeComplexity(shapes, paths int) int {
	switch {
	case shapes < 3 && paths < 5:
		return 1
	case shapes < 8 && paths < 15:
		return 2
	case shapes < 15 && paths < 30:
		return 3
	case shapes < 30 && paths < 60:
		return 4
	default:
		return 5
	}
}

// ElementComplexity scores a cluster from shapes + letters/10.
func ElementComplexity(totalElements float64) int {
	switch {
	case totalElements <= 20:
		return 1
	case totalElements <= 40:
		return 2
	case totalElements <= 60:
		return 3
	case totalElements <= 80:
		return 4
	default:
		return 5
	}
}

// SVGCuttingTime estimates minutes at 5 mm/s with a setup of at least two
// minutes or 20% of the cutting time, never less than five minutes.
func SVGCuttingTime(shapes int, widthMM, heightMM float64) float64 {
	pathLength := float64(shapes) * ((widthMM + heightMM) / 2) * 0.5
	cutSeconds := pathLength / 5
	setupSeconds := math.Max(120, cutSeconds*0.2)
	return math.Max(minCuttingMinutes, (cutSeconds+setupSeconds)/60)
}

// ClusterCuttingTime estimates minutes for one cluster, clamped to [5, 120].
func ClusterCuttingTime(shapes, letters int, widthMM, heightMM float64) float64 {
	perimeter := 2 * (widthMM + heightMM)
	multiplier := 1.0
	switch {
	case shapes > 30:
		multiplier = 1.3
	case shapes > 15:
		multiplier = 1.15
	}
	t := (2 + perimeter*0.008 + float64(shapes)*0.8 + float64(letters)*0.1) * multiplier
	return math.Max(minCuttingMinutes, math.Min(maxCuttingMinutes, t))
}

func svgResult(doc svgDocument) Result {
	shapes := doc.Shapes()
	paths := doc.Paths()
	return Result{
		Name:                "Design",
		WidthMM:             round2(doc.WidthMM),
		HeightMM:            round2(doc.HeightMM),
		NumShapes:           shapes,
		NumLetters:          doc.Letters,
		ComplexityScore:     ShapeComplexity(shapes, paths),
		HasIntricateDetails: shapes > 20 || paths > 10,
		CuttingTimeMinutes:  round1(SVGCuttingTime(shapes, doc.WidthMM, doc.HeightMM)),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }
