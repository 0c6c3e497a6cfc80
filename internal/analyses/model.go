package analyses

import (
	"time"

	"cutquote-backend/internal/design"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Item is one detected job, priced when order details were supplied.
type Item struct {
	design.Result
	Price    *float64 `json:"price,omitempty"`
	RawPrice *float64 `json:"raw_price,omitempty"`
}

// Analysis records one uploaded drawing and what was found in it.
type Analysis struct {
	ID           string         `json:"id"`
	FileName     string         `json:"file_name"`
	Format       design.Format  `json:"format"`
	StorageKey   string         `json:"storage_key,omitempty"`
	SizeBytes    int64          `json:"size_bytes"`
	Status       string         `json:"status"`
	Items        []Item         `json:"items,omitempty"`
	Report       *design.Report `json:"report,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	DurationMs   float64        `json:"duration_ms"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Upload is a drawing submitted for analysis.
type Upload struct {
	FileName string
	Data     []byte
}
