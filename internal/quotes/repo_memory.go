package quotes

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo stores quotes in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Quote
	byNumber map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Quote),
		byNumber: make(map[string]string),
	}
}

// Create stores the quote. Quote numbers are unique.
func (r *MemoryRepo) Create(ctx context.Context, quote Quote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNumber[quote.QuoteNumber]; taken {
		return ErrDuplicateNumber
	}
	quote.Items = append([]Item(nil), quote.Items...)
	quote.ItemCount = len(quote.Items)
	r.byID[quote.ID] = quote
	r.byNumber[quote.QuoteNumber] = quote.ID
	return nil
}

// LastNumber returns the highest issued number with the given prefix.
func (r *MemoryRepo) LastNumber(ctx context.Context, prefix string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	last := ""
	for number := range r.byNumber {
		if strings.HasPrefix(number, prefix) && numberAfter(number, last) {
			last = number
		}
	}
	return last, nil
}

// GetByID returns a quote with its items.
func (r *MemoryRepo) GetByID(ctx context.Context, quoteID string) (Quote, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	quote, ok := r.byID[quoteID]
	if !ok {
		return Quote{}, ErrNotFound
	}
	quote.Items = append([]Item(nil), quote.Items...)
	return quote, nil
}

// List returns quote headers, newest first, with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	all := r.headers(func(Quote) bool { return true })
	if offset >= len(all) {
		return []Quote{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// Search matches the customer name or quote number, ignoring case.
func (r *MemoryRepo) Search(ctx context.Context, query string, limit int) ([]Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	matches := r.headers(func(q Quote) bool {
		return strings.Contains(strings.ToLower(q.CustomerName), needle) ||
			strings.Contains(strings.ToLower(q.QuoteNumber), needle)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Delete removes a quote and its items.
func (r *MemoryRepo) Delete(ctx context.Context, quoteID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	quote, ok := r.byID[quoteID]
	if !ok {
		return ErrNotFound
	}
	delete(r.byID, quoteID)
	delete(r.byNumber, quote.QuoteNumber)
	return nil
}

func (r *MemoryRepo) headers(keep func(Quote) bool) []Quote {
	r.mu.RLock()
	out := make([]Quote, 0, len(r.byID))
	for _, q := range r.byID {
		if keep(q) {
			q.Items = nil
			out = append(out, q)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return numberAfter(out[i].QuoteNumber, out[j].QuoteNumber)
	})
	return out
}

// numberAfter orders quote numbers by length, then lexically, so Q…1000 sorts after Q…999.
func numberAfter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

var _ Repo = (*MemoryRepo)(nil)
