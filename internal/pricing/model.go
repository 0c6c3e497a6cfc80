package pricing

import (
	"fmt"
	"math"
	"strings"

	"cutquote-backend/internal/design"
)

// Job is the feature vector the price model consumes.
type Job struct {
	Material            string  `json:"material"`
	ThicknessMM         float64 `json:"thickness_mm"`
	NumLetters          int     `json:"num_letters"`
	NumShapes           int     `json:"num_shapes"`
	ComplexityScore     int     `json:"complexity_score"`
	HasIntricateDetails bool    `json:"has_intricate_details"`
	WidthMM             float64 `json:"width_mm"`
	HeightMM            float64 `json:"height_mm"`
	CuttingType         string  `json:"cutting_type"`
	CuttingTimeMinutes  float64 `json:"cutting_time_minutes"`
	Quantity            int     `json:"quantity"`
	RushJob             bool    `json:"rush_job"`
}

// Params are the order details that do not come from the drawing.
type Params struct {
	Material    string  `json:"material" form:"material"`
	ThicknessMM float64 `json:"thickness_mm" form:"thickness_mm"`
	CuttingType string  `json:"cutting_type" form:"cutting_type"`
	Quantity    int     `json:"quantity" form:"quantity"`
	RushJob     bool    `json:"rush_job" form:"rush_job"`
}

// Complete reports whether enough order details are present to price a job.
func (p Params) Complete() bool {
	return strings.TrimSpace(p.Material) != "" && strings.TrimSpace(p.CuttingType) != "" && p.ThicknessMM > 0
}

// JobFromResult combines an analysed design with order details.
func JobFromResult(r design.Result, p Params) Job {
	return Job{
		Material:            p.Material,
		ThicknessMM:         p.ThicknessMM,
		NumLetters:          r.NumLetters,
		NumShapes:           r.NumShapes,
		ComplexityScore:     r.ComplexityScore,
		HasIntricateDetails: r.HasIntricateDetails,
		WidthMM:             r.WidthMM,
		HeightMM:            r.HeightMM,
		CuttingType:         p.CuttingType,
		CuttingTimeMinutes:  r.CuttingTimeMinutes,
		Quantity:            p.Quantity,
		RushJob:             p.RushJob,
	}
}

// Normalize trims text fields and defaults the quantity to one.
func (j Job) Normalize() Job {
	j.Material = strings.TrimSpace(j.Material)
	j.CuttingType = strings.TrimSpace(j.CuttingType)
	if j.Quantity == 0 {
		j.Quantity = 1
	}
	return j
}

// Validate checks a normalized job.
func (j Job) Validate() error {
	switch {
	case j.Material == "":
		return fmt.Errorf("%w: material is required", ErrInvalidInput)
	case j.CuttingType == "":
		return fmt.Errorf("%w: cutting_type is required", ErrInvalidInput)
	case !(j.ThicknessMM > 0):
		return fmt.Errorf("%w: thickness_mm must be positive", ErrInvalidInput)
	case j.WidthMM < 0 || j.HeightMM < 0:
		return fmt.Errorf("%w: dimensions must not be negative", ErrInvalidInput)
	case j.NumLetters < 0 || j.NumShapes < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidInput)
	case j.ComplexityScore < 1 || j.ComplexityScore > 5:
		return fmt.Errorf("%w: complexity_score must be between 1 and 5", ErrInvalidInput)
	case j.CuttingTimeMinutes < 0 || math.IsNaN(j.CuttingTimeMinutes):
		return fmt.Errorf("%w: cutting_time_minutes must not be negative", ErrInvalidInput)
	case j.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	return nil
}

// numericFeatures lists the model inputs that are plain numbers.
var numericFeatures = []string{
	"thickness_mm",
	"num_letters",
	"num_shapes",
	"complexity_score",
	"has_intricate_details",
	"width_mm",
	"height_mm",
	"cutting_time_minutes",
	"quantity",
	"rush_job",
}

func (j Job) numeric() map[string]float64 {
	return map[string]float64{
		"thickness_mm":          j.ThicknessMM,
		"num_letters":           float64(j.NumLetters),
		"num_shapes":            float64(j.NumShapes),
		"complexity_score":      float64(j.ComplexityScore),
		"has_intricate_details": boolFeature(j.HasIntricateDetails),
		"width_mm":              j.WidthMM,
		"height_mm":             j.HeightMM,
		"cutting_time_minutes":  j.CuttingTimeMinutes,
		"quantity":              float64(j.Quantity),
		"rush_job":              boolFeature(j.RushJob),
	}
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
