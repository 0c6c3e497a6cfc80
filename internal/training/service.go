package training

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/shared/telemetry"
)

// Service records completed jobs and reports on the training set.
type Service struct {
	Repo   Repo
	Pricer *pricing.Service
}

// NewService constructs a Service.
func NewService(repo Repo, pricer *pricing.Service) *Service {
	return &Service{Repo: repo, Pricer: pricer}
}

// Record stores a job and the price charged for it.
func (s *Service) Record(ctx context.Context, job pricing.Job, actualPrice float64) (Record, error) {
	job = job.Normalize()
	if err := job.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !(actualPrice > 0) || math.IsInf(actualPrice, 0) {
		return Record{}, fmt.Errorf("%w: actual_price must be positive", ErrInvalidInput)
	}

	rec := Record{
		ID:          uuid.NewString(),
		Job:         job,
		ActualPrice: actualPrice,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	telemetry.Info("training.recorded", map[string]any{
		"record_id":    rec.ID,
		"material":     rec.Material,
		"actual_price": rec.ActualPrice,
	})
	return rec, nil
}

// Stats summarises the training set and the loaded model.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	records, err := s.Repo.All(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		TotalJobs: len(records),
		ByMaterial: lo.CountValuesBy(records, func(r Record) string {
			return strings.ToLower(strings.TrimSpace(r.Material))
		}),
	}
	if len(records) > 0 {
		stats.MeanPrice = lo.SumBy(records, func(r Record) float64 { return r.ActualPrice }) / float64(len(records))
		stats.MinPrice = lo.MinBy(records, func(a, b Record) bool { return a.ActualPrice < b.ActualPrice }).ActualPrice
		stats.MaxPrice = lo.MaxBy(records, func(a, b Record) bool { return a.ActualPrice > b.ActualPrice }).ActualPrice
	}
	if info, ok := s.Pricer.ModelInfo(); ok {
		stats.Model = &info
	}
	return stats, nil
}
