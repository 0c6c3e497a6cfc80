package quotes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/shared/metrics"
	"cutquote-backend/internal/shared/telemetry"
)

const (
	numberAttempts = 3
	searchLimit    = 50
)

// Service contains business logic for quotes.
type Service struct {
	Repo Repo
	// Pricer fills in item prices that were left at zero. Optional.
	Pricer *pricing.Service
	Now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, pricer *pricing.Service) *Service {
	return &Service{Repo: repo, Pricer: pricer, Now: func() time.Time { return time.Now().UTC() }}
}

// SaveSingle stores a quote with one item.
func (s *Service) SaveSingle(ctx context.Context, customer Customer, item Item) (Quote, error) {
	return s.Save(ctx, customer, []Item{item})
}

// Save stores a quote with one or more items under a fresh quote number.
// The total is the sum of the item prices.
func (s *Service) Save(ctx context.Context, customer Customer, items []Item) (Quote, error) {
	customer = trimCustomer(customer)
	if customer.Name == "" {
		return Quote{}, fmt.Errorf("%w: customer_name is required", ErrInvalidInput)
	}
	if len(items) == 0 {
		return Quote{}, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	prepared := make([]Item, len(items))
	for i, item := range items {
		p, err := s.prepareItem(ctx, i, item)
		if err != nil {
			return Quote{}, err
		}
		prepared[i] = p
	}

	now := s.now()
	quote := Quote{
		ID:               uuid.NewString(),
		CustomerName:     customer.Name,
		CustomerEmail:    customer.Email,
		CustomerPhone:    customer.Phone,
		CustomerWhatsApp: customer.WhatsApp,
		Notes:            customer.Notes,
		Total:            lo.SumBy(prepared, func(it Item) float64 { return it.ItemPrice }),
		ItemCount:        len(prepared),
		CreatedAt:        now,
		Items:            prepared,
	}

	for attempt := 1; ; attempt++ {
		number, err := s.nextNumber(ctx, now)
		if err != nil {
			return Quote{}, err
		}
		quote.QuoteNumber = number
		err = s.Repo.Create(ctx, quote)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateNumber) || attempt == numberAttempts {
			return Quote{}, err
		}
		telemetry.Warn("quote.number_conflict", map[string]any{"quote_number": number, "attempt": attempt})
	}

	metrics.IncQuotesSaved()
	telemetry.Info("quote.saved", map[string]any{
		"quote_id":     quote.ID,
		"quote_number": quote.QuoteNumber,
		"items":        len(quote.Items),
		"total":        quote.Total,
	})
	return quote, nil
}

// Get returns a quote with its items.
func (s *Service) Get(ctx context.Context, quoteID string) (Quote, error) {
	return s.Repo.GetByID(ctx, quoteID)
}

// List returns quotes newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Quote, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Search finds quotes by customer name or quote number.
func (s *Service) Search(ctx context.Context, query string) ([]Quote, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Quote{}, nil
	}
	return s.Repo.Search(ctx, query, searchLimit)
}

// Delete removes a quote.
func (s *Service) Delete(ctx context.Context, quoteID string) error {
	return s.Repo.Delete(ctx, quoteID)
}

func (s *Service) prepareItem(ctx context.Context, index int, item Item) (Item, error) {
	item.ItemName = strings.TrimSpace(item.ItemName)
	if item.ItemName == "" {
		item.ItemName = fmt.Sprintf("Item %d", index+1)
	}
	item.Job = item.Job.Normalize()
	if err := item.Job.Validate(); err != nil {
		return Item{}, fmt.Errorf("%w: item %d: %v", ErrInvalidInput, index+1, err)
	}
	if item.ItemPrice < 0 {
		return Item{}, fmt.Errorf("%w: item %d: item_price must not be negative", ErrInvalidInput, index+1)
	}
	if item.ItemPrice == 0 && s.Pricer.ModelLoaded() {
		q, err := s.Pricer.Price(ctx, item.Job)
		if err != nil {
			return Item{}, err
		}
		item.ItemPrice = q.Price
	}
	return item, nil
}

// nextNumber issues Q<YYYYMMDD><NNN>, one past the last number of the day.
func (s *Service) nextNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := "Q" + now.Format("20060102")
	last, err := s.Repo.LastNumber(ctx, prefix)
	if err != nil {
		return "", err
	}
	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func trimCustomer(c Customer) Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.WhatsApp = strings.TrimSpace(c.WhatsApp)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}
