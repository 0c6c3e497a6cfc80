package training

import (
	"time"

	"cutquote-backend/internal/pricing"
)

// Record is a completed job with the price that was actually charged.
type Record struct {
	ID string `json:"id"`
	pricing.Job
	ActualPrice float64   `json:"actual_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarises the recorded jobs.
type Stats struct {
	TotalJobs  int                `json:"total_jobs"`
	MeanPrice  float64            `json:"mean_price"`
	MinPrice   float64            `json:"min_price"`
	MaxPrice   float64            `json:"max_price"`
	ByMaterial map[string]int     `json:"jobs_by_material"`
	Model      *pricing.ModelInfo `json:"model,omitempty"`
}
