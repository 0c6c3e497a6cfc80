package pricing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the pricing service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches pricing routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/price", h.price)
}

func (h *Handler) price(c *gin.Context) {
	var job Job
	if err := c.ShouldBindJSON(&job); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	quote, err := h.Svc.Price(c.Request.Context(), job)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"success":   true,
		"price":     quote.Price,
		"raw_price": quote.RawPrice,
	})
}

// WriteError maps pricing errors to HTTP responses.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrModelUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "model_unavailable", "could not calculate price", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to calculate price", nil)
	}
}
