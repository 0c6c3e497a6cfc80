package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/design"
	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/shared/server/middleware"
	"cutquote-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze(""))
	rg.POST("/analyze/svg", h.analyze(design.FormatSVG))
	rg.POST("/analyze/dxf", h.analyze(design.FormatDXF))
	rg.POST("/analyze/inspect", h.inspect)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
}

func (h *Handler) analyze(format design.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileName, _, data, ok := h.readUpload(c)
		if !ok {
			return
		}

		var params pricing.Params
		if err := c.ShouldBind(&params); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid pricing fields", nil)
			return
		}

		analysis, err := h.Svc.Analyze(c.Request.Context(), Upload{FileName: fileName, Data: data}, format, params)
		if analysis.ID != "" {
			c.Set(middleware.AnalysisIDKey, analysis.ID)
		}
		if err != nil {
			writeAnalyzeError(c, err)
			return
		}

		resp := gin.H{
			"success":     true,
			"analysis_id": analysis.ID,
			"file_name":   analysis.FileName,
			"format":      analysis.Format,
			"jobs":        len(analysis.Items),
			"items":       analysis.Items,
		}
		if analysis.Report != nil {
			resp["report"] = analysis.Report
		}
		respond.OK(c, resp)
	}
}

func writeAnalyzeError(c *gin.Context, err error) {
	var parseErr *design.ParseError
	switch {
	case errors.Is(err, ErrEmptyUpload):
		respond.Error(c, http.StatusBadRequest, "validation_error", "no file uploaded", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, design.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, "unsupported_format", err.Error(), nil)
	case errors.As(err, &parseErr):
		respond.Error(c, http.StatusUnprocessableEntity, "parse_error", parseErr.Error(), gin.H{
			"format":   parseErr.Format,
			"attempts": parseErr.Attempts,
		})
	case errors.Is(err, design.ErrEmptyDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_document", design.ErrEmptyDocument.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze file", nil)
	}
}

func (h *Handler) inspect(c *gin.Context) {
	fileName, contentType, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	respond.OK(c, gin.H{
		"success":    true,
		"debug_info": Inspect(fileName, contentType, data),
	})
}

// readUpload reads the multipart "file" field within the upload limit. It
// writes the error response itself and reports false on failure.
func (h *Handler) readUpload(c *gin.Context) (string, string, []byte, bool) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", gin.H{"limit_bytes": tooLarge.Limit})
			return "", "", nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "no file uploaded", nil)
		return "", "", nil, false
	}
	if fh.Filename == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no file selected", nil)
		return "", "", nil, false
	}

	f, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return "", "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return "", "", nil, false
	}
	return fh.Filename, fh.Header.Get("Content-Type"), data, true
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysisID := c.Param("id")
	if analysisID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "analysis id is required", nil)
		return
	}

	analysis, err := h.Svc.Get(c.Request.Context(), analysisID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch analysis", nil)
		}
		return
	}

	c.Set(middleware.AnalysisIDKey, analysis.ID)
	respond.OK(c, analysis)
}

func (h *Handler) listAnalyses(c *gin.Context) {
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

	analyses, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}
	respond.OK(c, analyses)
}
