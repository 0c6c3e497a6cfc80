package pricing

import (
	"context"
	"math"

	"cutquote-backend/internal/shared/metrics"
	"cutquote-backend/internal/shared/telemetry"
)

// Quote is a priced job.
type Quote struct {
	RawPrice float64 `json:"raw_price"`
	Price    float64 `json:"price"`
}

// Service validates jobs and prices them with the configured estimator.
type Service struct {
	Estimator Estimator
}

// NewService returns a Service, using Unavailable when est is nil.
func NewService(est Estimator) *Service {
	if est == nil {
		est = Unavailable{}
	}
	return &Service{Estimator: est}
}

// ModelLoaded reports whether a real estimator is configured.
func (s *Service) ModelLoaded() bool {
	if s == nil || s.Estimator == nil {
		return false
	}
	_, unavailable := s.Estimator.(Unavailable)
	return !unavailable
}

// ModelInfo returns the training metadata of the estimator, if it has any.
func (s *Service) ModelInfo() (ModelInfo, bool) {
	if s == nil {
		return ModelInfo{}, false
	}
	d, ok := s.Estimator.(interface{ Info() ModelInfo })
	if !ok {
		return ModelInfo{}, false
	}
	return d.Info(), true
}

// Price validates job and returns the raw and rounded price.
func (s *Service) Price(ctx context.Context, job Job) (Quote, error) {
	job = job.Normalize()
	if err := job.Validate(); err != nil {
		return Quote{}, err
	}
	if !s.ModelLoaded() {
		return Quote{}, ErrModelUnavailable
	}
	raw, err := s.Estimator.Estimate(ctx, job)
	if err != nil {
		return Quote{}, err
	}
	rounded := RoundSmart(math.Max(raw, 0))
	metrics.IncPriceEstimates()
	telemetry.Info("pricing.estimate", map[string]any{
		"material":     job.Material,
		"cutting_type": job.CuttingType,
		"raw_price":    raw,
		"price":        rounded,
	})
	return Quote{RawPrice: raw, Price: rounded}, nil
}
