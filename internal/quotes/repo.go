package quotes

import "context"

// Repo defines persistence operations for quotes.
type Repo interface {
	Create(ctx context.Context, quote Quote) error
	// LastNumber returns the highest quote number starting with prefix, or "".
	LastNumber(ctx context.Context, prefix string) (string, error)
	GetByID(ctx context.Context, quoteID string) (Quote, error)
	List(ctx context.Context, limit, offset int) ([]Quote, error)
	Search(ctx context.Context, query string, limit int) ([]Quote, error)
	Delete(ctx context.Context, quoteID string) error
}
