package training

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the training service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches training routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/training/jobs", h.record)
	rg.GET("/training/stats", h.stats)
}

func (h *Handler) record(c *gin.Context) {
	var req Record
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	rec, err := h.Svc.Record(c.Request.Context(), req.Job, req.ActualPrice)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, rec)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load training stats", nil)
		return
	}
	respond.OK(c, stats)
}
