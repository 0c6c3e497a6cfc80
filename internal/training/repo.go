package training

import "context"

// Repo defines persistence operations for training records.
type Repo interface {
	Create(ctx context.Context, record Record) error
	All(ctx context.Context) ([]Record, error)
}
