package quotes

import (
	"time"

	"cutquote-backend/internal/pricing"
)

// Quote is a saved customer quote with its ordered line items.
type Quote struct {
	ID               string    `json:"id"`
	QuoteNumber      string    `json:"quote_number"`
	CustomerName     string    `json:"customer_name"`
	CustomerEmail    string    `json:"customer_email,omitempty"`
	CustomerPhone    string    `json:"customer_phone,omitempty"`
	CustomerWhatsApp string    `json:"customer_whatsapp,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Total            float64   `json:"total"`
	ItemCount        int       `json:"item_count"`
	CreatedAt        time.Time `json:"created_at"`
	Items            []Item    `json:"items,omitempty"`
}

// Item is one priced job on a quote.
type Item struct {
	ItemName string `json:"item_name"`
	pricing.Job
	ItemPrice float64 `json:"item_price"`
}

// Customer holds the contact details captured with a quote.
type Customer struct {
	Name     string `json:"customer_name"`
	Email    string `json:"customer_email"`
	Phone    string `json:"customer_phone"`
	WhatsApp string `json:"customer_whatsapp"`
	Notes    string `json:"notes"`
}
