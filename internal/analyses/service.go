package analyses

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"cutquote-backend/internal/design"
	"cutquote-backend/internal/pricing"
	"cutquote-backend/internal/shared/metrics"
	"cutquote-backend/internal/shared/storage/object"
	"cutquote-backend/internal/shared/telemetry"
	"cutquote-backend/internal/shared/util"
)

// Service contains business logic for analyses.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Analyzer design.Analyzer
	// Pricer prices detected jobs when order details are supplied. Optional.
	Pricer *pricing.Service
	Now    func() time.Time
}

// NewService constructs a Service. store and pricer may be nil.
func NewService(repo Repo, store object.ObjectStore, analyzer design.Analyzer, pricer *pricing.Service) *Service {
	return &Service{
		Repo:     repo,
		Store:    store,
		Analyzer: analyzer,
		Pricer:   pricer,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Analyze runs an uploaded drawing through the analyzer and records the
// outcome. want locks the accepted format; empty accepts SVG and DXF.
// Failed analyses are recorded too and returned alongside the error.
func (s *Service) Analyze(ctx context.Context, upload Upload, want design.Format, params pricing.Params) (Analysis, error) {
	if len(upload.Data) == 0 || strings.TrimSpace(upload.FileName) == "" {
		return Analysis{}, ErrEmptyUpload
	}
	name, err := util.SanitizeFileName(upload.FileName)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	format, err := design.FormatFromFilename(name)
	if err != nil {
		return Analysis{}, err
	}
	if want != "" && format != want {
		return Analysis{}, fmt.Errorf("%w: only %s files supported", design.ErrUnsupportedFormat, strings.ToUpper(string(want)))
	}
	if params.Complete() {
		probe := pricing.JobFromResult(design.DefaultResult(""), params).Normalize()
		if err := probe.Validate(); err != nil {
			return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	analysis := Analysis{
		ID:        uuid.NewString(),
		FileName:  name,
		Format:    format,
		SizeBytes: int64(len(upload.Data)),
		CreatedAt: s.now(),
	}
	startedAt := time.Now()
	metrics.IncAnalysisStarted()

	analysis.StorageKey = s.storeUpload(ctx, analysis, upload.Data)

	var results []design.Result
	if format == design.FormatDXF {
		var report design.Report
		results, report, err = s.Analyzer.InspectDXF(upload.Data)
		analysis.Report = &report
		s.logReport(ctx, analysis, report)
	} else {
		results, err = s.Analyzer.Analyze(format, upload.Data)
	}
	analysis.DurationMs = float64(time.Since(startedAt)) / float64(time.Millisecond)
	metrics.ObserveAnalysisDurationMs(analysis.DurationMs)

	if err != nil {
		analysis.Status = StatusFailed
		analysis.ErrorMessage = err.Error()
		metrics.IncAnalysisFailed()
		telemetry.Warn("analysis.status", map[string]any{
			"analysis_id": analysis.ID,
			"format":      string(format),
			"status":      analysis.Status,
			"error":       err,
		})
		if rerr := s.Repo.Create(ctx, analysis); rerr != nil {
			telemetry.Error("analysis.record_failed", map[string]any{"analysis_id": analysis.ID, "error": rerr})
		}
		return analysis, err
	}

	analysis.Items = s.priceItems(ctx, results, params)
	analysis.Status = StatusCompleted
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, err
	}

	metrics.IncAnalysisCompleted()
	metrics.AddJobsDetected(len(results))
	telemetry.Info("analysis.status", map[string]any{
		"analysis_id": analysis.ID,
		"format":      string(format),
		"status":      analysis.Status,
		"jobs":        len(results),
		"duration_ms": analysis.DurationMs,
	})
	return analysis, nil
}

// Get returns an analysis by ID.
func (s *Service) Get(ctx context.Context, analysisID string) (Analysis, error) {
	return s.Repo.GetByID(ctx, analysisID)
}

// List returns analyses newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Analysis, error) {
	return s.Repo.List(ctx, limit, offset)
}

// storeUpload keeps the raw drawing for later inspection. Storage failures
// are logged and do not fail the analysis.
func (s *Service) storeUpload(ctx context.Context, analysis Analysis, data []byte) string {
	if s.Store == nil {
		return ""
	}
	key, _, _, err := s.Store.Save(ctx, "analyses/"+string(analysis.Format), analysis.FileName, bytes.NewReader(data))
	if err != nil {
		telemetry.Error("analysis.store_failed", map[string]any{
			"analysis_id": analysis.ID,
			"error":       err,
		})
		return ""
	}
	return key
}

func (s *Service) logReport(ctx context.Context, analysis Analysis, report design.Report) {
	telemetry.Info("analysis.dxf.report", map[string]any{
		"analysis_id":   analysis.ID,
		"version":       report.Version,
		"unit_code":     report.UnitCode,
		"unit_factor":   report.UnitFactor,
		"entity_types":  report.EntityTypes(),
		"entity_counts": report.EntityCounts,
		"dropped":       report.Dropped,
		"meaningful":    report.Meaningful,
		"boxed":         report.Boxed,
		"clusters":      len(report.Clusters),
	})
	if s.Store == nil || analysis.StorageKey == "" {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if _, err := s.Store.SaveWithKey(ctx, analysis.StorageKey+".report.json", "application/json", bytes.NewReader(payload)); err != nil {
		telemetry.Warn("analysis.report_store_failed", map[string]any{
			"analysis_id": analysis.ID,
			"error":       err,
		})
	}
}

func (s *Service) priceItems(ctx context.Context, results []design.Result, params pricing.Params) []Item {
	items := make([]Item, len(results))
	priced := params.Complete() && s.Pricer.ModelLoaded()
	for i, r := range results {
		items[i] = Item{Result: r}
		if !priced {
			continue
		}
		q, err := s.Pricer.Price(ctx, pricing.JobFromResult(r, params))
		if err != nil {
			telemetry.Warn("analysis.price_failed", map[string]any{"item": r.Name, "error": err})
			continue
		}
		items[i].Price = &q.Price
		items[i].RawPrice = &q.RawPrice
	}
	return items
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// InspectInfo describes an upload without analysing it.
type InspectInfo struct {
	FileName      string `json:"filename"`
	ContentType   string `json:"content_type"`
	ContentLength int    `json:"content_length"`
	FileType      string `json:"file_type"`
	First10Bytes  string `json:"first_10_bytes,omitempty"`
	First20Chars  string `json:"first_20_chars,omitempty"`
}

// Inspect reports upload diagnostics: declared and sniffed content type,
// size and the leading bytes.
func Inspect(fileName, contentType string, data []byte) InspectInfo {
	info := InspectInfo{
		FileName:      fileName,
		ContentType:   contentType,
		ContentLength: len(data),
		FileType:      "unknown",
	}
	if info.ContentType == "" {
		info.ContentType = util.ContentType(fileName, data)
	}
	if format, err := design.FormatFromFilename(fileName); err == nil {
		info.FileType = string(format)
	}
	if len(data) > 10 {
		info.First10Bytes = hex.EncodeToString(data[:10])
		info.First20Chars = leadingText(data, 20)
	}
	return info
}

// leadingText decodes up to n bytes as UTF-8, dropping invalid sequences.
func leadingText(data []byte, n int) string {
	if len(data) > n {
		data = data[:n]
	}
	var b strings.Builder
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r != utf8.RuneError || size > 1 {
			b.WriteRune(r)
		}
		data = data[size:]
	}
	return b.String()
}
