// Package design turns SVG and DXF drawings into job descriptions for
// pricing: dimensions, shape and letter counts, complexity and an estimated
// cutting time. DXF drawings are split into independent jobs by spatial
// clustering.
package design

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ErrUnsupportedFormat is returned for files that are neither SVG nor DXF.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// FormatFromFilename picks the drawing format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".svg":
		return FormatSVG, nil
	case ".dxf":
		return FormatDXF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Analyzer runs the analysis pipeline. The zero value uses the default
// clustering threshold.
type Analyzer struct {
	// Threshold is the clustering distance in mm; <= 0 means 50.
	Threshold float64
}

func (a Analyzer) threshold() float64 {
	if a.Threshold <= 0 {
		return DefaultClusterThreshold
	}
	return a.Threshold
}

// Report is the diagnostic breakdown of a DXF analysis.
type Report struct {
	Version      string          `json:"version,omitempty"`
	UnitCode     int             `json:"unit_code"`
	UnitFactor   float64         `json:"unit_factor"`
	EntityCounts map[string]int  `json:"entity_counts"`
	Dropped      map[string]int  `json:"dropped,omitempty"`
	Meaningful   int             `json:"meaningful_entities"`
	Boxed        int             `json:"boxed_entities"`
	Clusters     []ClusterReport `json:"clusters"`
}

// ClusterReport describes one detected job.
type ClusterReport struct {
	Name         string  `json:"name"`
	Entities     int     `json:"entities"`
	LineGroups   int     `json:"line_groups"`
	TextEntities int     `json:"text_entities"`
	Density      float64 `json:"density"`
}

// EntityTypes returns the encountered entity type names, sorted.
func (r Report) EntityTypes() []string {
	keys := lo.Keys(r.EntityCounts)
	sort.Strings(keys)
	return keys
}

// Analyze dispatches on format and always returns at least one result on success.
func (a Analyzer) Analyze(format Format, data []byte) ([]Result, error) {
	switch format {
	case FormatSVG:
		r, err := a.AnalyzeSVG(data)
		if err != nil {
			return nil, err
		}
		return []Result{r}, nil
	case FormatDXF:
		return a.AnalyzeDXF(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// AnalyzeSVG characterises an SVG drawing as a single job.
func (a Analyzer) AnalyzeSVG(data []byte) (Result, error) {
	doc, err := parseSVG(data)
	if err != nil {
		return Result{}, &AnalysisError{
			Format: FormatSVG,
			Err:    &ParseError{Format: FormatSVG, Attempts: []string{err.Error()}},
		}
	}
	return svgResult(doc), nil
}

// AnalyzeDXF splits a DXF drawing into jobs and characterises each one.
func (a Analyzer) AnalyzeDXF(data []byte) ([]Result, error) {
	results, _, err := a.InspectDXF(data)
	return results, err
}

// InspectDXF is AnalyzeDXF plus the diagnostic report.
func (a Analyzer) InspectDXF(data []byte) ([]Result, Report, error) {
	drawing, err := parseDXF(data)
	report := Report{
		Version:      drawing.Version,
		UnitCode:     drawing.UnitCode,
		UnitFactor:   drawing.UnitFactor,
		EntityCounts: drawing.TypeCounts,
		Dropped:      drawing.Dropped,
		Meaningful:   len(drawing.Entities),
	}
	if err != nil {
		return nil, report, &AnalysisError{Format: FormatDXF, Err: err}
	}

	var boxes []EntityBox
	for _, e := range drawing.Entities {
		eb, ok := NewEntityBox(e, drawing.UnitFactor)
		if !ok || !eb.Box.Material() {
			continue
		}
		boxes = append(boxes, eb)
	}
	report.Boxed = len(boxes)
	if len(boxes) == 0 {
		return []Result{DefaultResult("Design")}, report, nil
	}

	clusters := ClusterEntities(boxes, a.threshold())
	results := make([]Result, 0, len(clusters))
	for i, c := range clusters {
		name := "Design"
		if len(clusters) > 1 {
			name = fmt.Sprintf("Job %d", i+1)
		}
		f := ExtractFeatures(c.Members)
		results = append(results, f.Result(name, len(c.Members)))
		report.Clusters = append(report.Clusters, ClusterReport{
			Name:         name,
			Entities:     len(c.Members),
			LineGroups:   f.LineGroups,
			TextEntities: f.TextEntities,
			Density:      f.Density,
		})
	}
	return results, report, nil
}

// AnalyzeSVG analyzes with default settings.
func AnalyzeSVG(data []byte) (Result, error) { return Analyzer{}.AnalyzeSVG(data) }

// AnalyzeDXF analyzes with default settings.
func AnalyzeDXF(data []byte) ([]Result, error) { return Analyzer{}.AnalyzeDXF(data) }
