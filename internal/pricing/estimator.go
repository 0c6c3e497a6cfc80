package pricing

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Estimator predicts the raw price of a job.
type Estimator interface {
	Estimate(ctx context.Context, job Job) (float64, error)
}

// Unavailable is the estimator used when no model could be loaded.
type Unavailable struct{}

func (Unavailable) Estimate(ctx context.Context, job Job) (float64, error) {
	return 0, ErrModelUnavailable
}

// ModelInfo is the training metadata shipped with a model file.
type ModelInfo struct {
	TotalJobs int       `yaml:"total_jobs" json:"total_jobs"`
	R2Score   float64   `yaml:"r2_score" json:"r2_score"`
	TrainedAt time.Time `yaml:"trained_at" json:"trained_at,omitempty"`
}

// LinearModel is a linear regression over the numeric job features plus
// one-hot material and cutting type terms. Categories the model was not
// trained on contribute nothing.
type LinearModel struct {
	Intercept    float64            `yaml:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients"`
	Materials    map[string]float64 `yaml:"materials"`
	CuttingTypes map[string]float64 `yaml:"cutting_types"`
	Metadata     ModelInfo          `yaml:"metadata"`
}

// LoadLinearModel reads a model from a YAML file.
func LoadLinearModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing model: %w", err)
	}
	return ParseLinearModel(raw)
}

// ParseLinearModel decodes a YAML model and rejects unknown feature names.
func ParseLinearModel(raw []byte) (*LinearModel, error) {
	var m LinearModel
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode pricing model: %w", err)
	}
	known := make(map[string]bool, len(numericFeatures))
	for _, f := range numericFeatures {
		known[f] = true
	}
	for name := range m.Coefficients {
		if !known[name] {
			return nil, fmt.Errorf("decode pricing model: unknown feature %q", name)
		}
	}
	m.Materials = foldKeys(m.Materials)
	m.CuttingTypes = foldKeys(m.CuttingTypes)
	return &m, nil
}

// Estimate returns the model output for a job.
func (m *LinearModel) Estimate(ctx context.Context, job Job) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	price := m.Intercept
	values := job.numeric()
	for name, coef := range m.Coefficients {
		price += coef * values[name]
	}
	price += m.Materials[foldKey(job.Material)]
	price += m.CuttingTypes[foldKey(job.CuttingType)]
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrBadPrediction
	}
	return price, nil
}

// Info returns the training metadata.
func (m *LinearModel) Info() ModelInfo { return m.Metadata }

func foldKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[foldKey(k)] = v
	}
	return out
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RoundSmart rounds a price up to a tidy step that grows with the price:
// 10 under 100, 50 under 1 000, 100 under 10 000, 500 under 100 000 and
// 1 000 above.
func RoundSmart(price float64) float64 {
	var step float64
	switch {
	case price < 100:
		step = 10
	case price < 1000:
		step = 50
	case price < 10000:
		step = 100
	case price < 100000:
		step = 500
	default:
		step = 1000
	}
	return math.Ceil(price/step) * step
}
