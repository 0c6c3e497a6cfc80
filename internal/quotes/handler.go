package quotes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/shared/server/middleware"
	"cutquote-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the quotes service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches quote routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", h.create)
	rg.GET("/quotes", h.list)
	rg.GET("/quotes/search", h.search)
	rg.GET("/quotes/:id", h.get)
	rg.DELETE("/quotes/:id", h.delete)
}

type createRequest struct {
	Customer
	Item  *Item  `json:"item"`
	Items []Item `json:"items"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	items := req.Items
	if req.Item != nil {
		items = append([]Item{*req.Item}, items...)
	}

	quote, err := h.Svc.Save(c.Request.Context(), req.Customer, items)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, pricing.ErrModelUnavailable), errors.Is(err, pricing.ErrBadPrediction):
			pricing.WriteError(c, err)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save quote", nil)
		}
		return
	}

	c.Set(middleware.QuoteNumberKey, quote.QuoteNumber)
	respond.JSON(c, http.StatusCreated, gin.H{
		"success":      true,
		"quote_id":     quote.ID,
		"quote_number": quote.QuoteNumber,
		"total":        quote.Total,
		"quote":        quote,
	})
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	quotes, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list quotes", nil)
		return
	}
	respond.OK(c, quotes)
}

func (h *Handler) search(c *gin.Context) {
	quotes, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to search quotes", nil)
		return
	}
	respond.OK(c, quotes)
}

func (h *Handler) get(c *gin.Context) {
	quote, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quote not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch quote", nil)
		}
		return
	}
	c.Set(middleware.QuoteNumberKey, quote.QuoteNumber)
	respond.OK(c, quote)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "quote not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete quote", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
