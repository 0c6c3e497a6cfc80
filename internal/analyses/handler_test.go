package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cutquote-backend/internal/design"
	"cutquote-backend/internal/pricing"
	local "cutquote-backend/internal/shared/storage/object/local"
)

func setupAnalysisRouter(t *testing.T, limit int64, pricer *pricing.Service) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := NewMemoryRepo()
	svc := NewService(repo, local.New(t.TempDir()), design.Analyzer{}, pricer)
	router := gin.New()
	NewHandler(svc, limit).RegisterRoutes(router.Group("/api/v1"))
	return router, repo
}

func multipartRequest(t *testing.T, path, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type analyzeResponse struct {
	Success    bool   `json:"success"`
	AnalysisID string `json:"analysis_id"`
	Format     string `json:"format"`
	Jobs       int    `json:"jobs"`
	Items      []Item `json:"items"`
	Report     *struct {
		Clusters []struct {
			Name string `json:"name"`
		} `json:"clusters"`
	} `json:"report"`
}

type errorResponse struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestAnalyzeSVGEndpoint(t *testing.T) {
	router, _ := setupAnalysisRouter(t, 0, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t, "/api/v1/analyze/svg", "sign.svg", []byte(sampleSVG), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body analyzeResponse
	decode(t, resp, &body)
	if !body.Success || body.AnalysisID == "" || body.Format != "svg" || body.Jobs != 1 {
		t.Fatalf("unexpected response %+v", body)
	}
	if body.Items[0].WidthMM != 200 || body.Items[0].HeightMM != 100 {
		t.Fatalf("unexpected item %+v", body.Items[0])
	}
	if body.Report != nil {
		t.Fatalf("expected no report for SVG")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+body.AnalysisID, nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var stored Analysis
	decode(t, resp, &stored)
	if stored.ID != body.AnalysisID || stored.Status != StatusCompleted || stored.FileName != "sign.svg" {
		t.Fatalf("unexpected stored analysis %+v", stored)
	}
}

func TestAnalyzeDXFEndpointWithPricing(t *testing.T) {
	model, err := pricing.ParseLinearModel([]byte("intercept: 120\n"))
	if err != nil {
		t.Fatalf("ParseLinearModel: %v", err)
	}
	router, _ := setupAnalysisRouter(t, 0, pricing.NewService(model))

	fields := map[string]string{
		"material":     "mdf",
		"thickness_mm": "6",
		"cutting_type": "cnc",
		"quantity":     "2",
		"rush_job":     "true",
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t, "/api/v1/analyze", "panel.dxf", dxfCircles(0, 500), fields))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body analyzeResponse
	decode(t, resp, &body)
	if body.Jobs != 2 || body.Report == nil || len(body.Report.Clusters) != 2 {
		t.Fatalf("unexpected response %+v", body)
	}
	for _, item := range body.Items {
		if item.Price == nil || *item.Price != 150 {
			t.Fatalf("expected price 150, got %+v", item)
		}
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	router, _ := setupAnalysisRouter(t, 0, nil)

	cases := []struct {
		name     string
		path     string
		fileName string
		data     []byte
		fields   map[string]string
		status   int
		code     string
	}{
		{"missing file", "/api/v1/analyze", "", nil, nil, http.StatusBadRequest, "validation_error"},
		{"empty file", "/api/v1/analyze", "a.svg", nil, nil, http.StatusBadRequest, "validation_error"},
		{"unsupported", "/api/v1/analyze", "a.png", []byte("png"), nil, http.StatusBadRequest, "unsupported_format"},
		{"format lock", "/api/v1/analyze/svg", "a.dxf", dxfCircles(0), nil, http.StatusBadRequest, "unsupported_format"},
		{"parse error", "/api/v1/analyze/svg", "a.svg", []byte(`<svg><path></svg>`), nil, http.StatusUnprocessableEntity, "parse_error"},
		{"empty drawing", "/api/v1/analyze/dxf", "a.dxf", dxfCircles(), nil, http.StatusUnprocessableEntity, "empty_document"},
		{"bad thickness", "/api/v1/analyze", "a.svg", []byte(sampleSVG), map[string]string{"thickness_mm": "thick"}, http.StatusBadRequest, "validation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, multipartRequest(t, tc.path, tc.fileName, tc.data, tc.fields))
			if resp.Code != tc.status {
				t.Fatalf("expected status %d, got %d: %s", tc.status, resp.Code, resp.Body.String())
			}
			var body errorResponse
			decode(t, resp, &body)
			if body.Error.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, body.Error.Code)
			}
		})
	}
}

func TestAnalyzeParseErrorCarriesAttempts(t *testing.T) {
	router, _ := setupAnalysisRouter(t, 0, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t, "/api/v1/analyze", "a.dxf", []byte("definitely not\na drawing\n"), nil))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", resp.Code)
	}
	var body errorResponse
	decode(t, resp, &body)
	var details struct {
		Format   string   `json:"format"`
		Attempts []string `json:"attempts"`
	}
	if err := json.Unmarshal(body.Error.Details, &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.Format != "dxf" || len(details.Attempts) != 2 {
		t.Fatalf("unexpected details %+v", details)
	}
}

func TestAnalyzeRejectsOversizedUpload(t *testing.T) {
	router, repo := setupAnalysisRouter(t, 1024, nil)

	big := []byte(`<svg xmlns="http://www.w3.org/2000/svg">` + strings.Repeat("<rect/>", 2000) + `</svg>`)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t, "/api/v1/analyze", "big.svg", big, nil))
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", resp.Code)
	}
	if list, _ := repo.List(context.Background(), 0, 0); len(list) != 0 {
		t.Fatalf("oversized upload must not be recorded")
	}
}

func TestInspectEndpoint(t *testing.T) {
	router, repo := setupAnalysisRouter(t, 0, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t, "/api/v1/analyze/inspect", "part.dxf", dxfCircles(0), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Success   bool        `json:"success"`
		DebugInfo InspectInfo `json:"debug_info"`
	}
	decode(t, resp, &body)
	if !body.Success || body.DebugInfo.FileName != "part.dxf" || body.DebugInfo.FileType != "dxf" {
		t.Fatalf("unexpected response %+v", body)
	}
	if body.DebugInfo.First10Bytes != "300a53454354494f4e0a" {
		t.Fatalf("unexpected leading bytes %q", body.DebugInfo.First10Bytes)
	}
	if list, _ := repo.List(context.Background(), 0, 0); len(list) != 0 {
		t.Fatalf("inspect must not record an analysis")
	}
}

func TestAnalysesListAndNotFound(t *testing.T) {
	router, _ := setupAnalysisRouter(t, 0, nil)

	for _, name := range []string{"a.svg", "b.svg", "c.svg"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, multipartRequest(t, "/api/v1/analyze", name, []byte(sampleSVG), nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=2&offset=-5", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var list []Analysis
	decode(t, resp, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/missing", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}
