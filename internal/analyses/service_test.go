package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"cutquote-backend/internal/design"
	"cutquote-backend/internal/pricing"
	local "cutquote-backend/internal/shared/storage/object/local"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100"><path d="M0 0 L10 10"/></svg>`

func dxfCircles(centres ...float64) []byte {
	var b strings.Builder
	b.WriteString("0\nSECTION\n2\nHEADER\n9\n$INSUNITS\n70\n4\n0\nENDSEC\n")
	b.WriteString("0\nSECTION\n2\nENTITIES\n")
	for _, x := range centres {
		fmt.Fprintf(&b, "0\nCIRCLE\n8\n0\n10\n%g\n20\n0\n40\n10\n", x)
	}
	b.WriteString("0\nENDSEC\n0\nEOF\n")
	return []byte(b.String())
}

func newTestService(t *testing.T, pricer *pricing.Service) (*Service, *MemoryRepo, *local.Store) {
	t.Helper()
	repo := NewMemoryRepo()
	store := local.New(t.TempDir())
	return NewService(repo, store, design.Analyzer{}, pricer), repo, store
}

func readObject(t *testing.T, store *local.Store, key string) []byte {
	t.Helper()
	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open %s: %v", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return data
}

func TestAnalyzeSVGRecordsCompletedAnalysis(t *testing.T) {
	svc, repo, store := newTestService(t, nil)
	ctx := context.Background()

	analysis, err := svc.Analyze(ctx, Upload{FileName: "sign.svg", Data: []byte(sampleSVG)}, "", pricing.Params{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Status != StatusCompleted || analysis.Format != design.FormatSVG {
		t.Fatalf("unexpected analysis %+v", analysis)
	}
	if len(analysis.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(analysis.Items))
	}
	item := analysis.Items[0]
	if item.WidthMM != 200 || item.HeightMM != 100 || item.NumShapes != 1 {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.Price != nil {
		t.Fatalf("expected no price without order details, got %v", *item.Price)
	}
	if analysis.Report != nil {
		t.Fatalf("expected no report for SVG")
	}
	if analysis.SizeBytes != int64(len(sampleSVG)) {
		t.Fatalf("expected size %d, got %d", len(sampleSVG), analysis.SizeBytes)
	}

	if !strings.HasPrefix(analysis.StorageKey, "analyses/svg/") || !strings.HasSuffix(analysis.StorageKey, "_sign.svg") {
		t.Fatalf("unexpected storage key %q", analysis.StorageKey)
	}
	if got := readObject(t, store, analysis.StorageKey); string(got) != sampleSVG {
		t.Fatalf("stored upload differs: %q", got)
	}

	stored, err := repo.GetByID(ctx, analysis.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusCompleted || len(stored.Items) != 1 {
		t.Fatalf("unexpected stored analysis %+v", stored)
	}
}

func TestAnalyzeDXFSplitsJobsAndStoresReport(t *testing.T) {
	svc, _, store := newTestService(t, nil)

	analysis, err := svc.Analyze(context.Background(), Upload{FileName: "panel.DXF", Data: dxfCircles(0, 500)}, design.FormatDXF, pricing.Params{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Items) != 2 || analysis.Items[0].Name != "Job 1" || analysis.Items[1].Name != "Job 2" {
		t.Fatalf("unexpected items %+v", analysis.Items)
	}
	if analysis.Report == nil || len(analysis.Report.Clusters) != 2 || analysis.Report.EntityCounts["CIRCLE"] != 2 {
		t.Fatalf("unexpected report %+v", analysis.Report)
	}

	var report design.Report
	if err := json.Unmarshal(readObject(t, store, analysis.StorageKey+".report.json"), &report); err != nil {
		t.Fatalf("decode stored report: %v", err)
	}
	if report.Boxed != 2 {
		t.Fatalf("expected 2 boxed entities in stored report, got %d", report.Boxed)
	}
}

func TestAnalyzePricesItemsWhenParamsComplete(t *testing.T) {
	model, err := pricing.ParseLinearModel([]byte("intercept: 42\n"))
	if err != nil {
		t.Fatalf("ParseLinearModel: %v", err)
	}
	svc, _, _ := newTestService(t, pricing.NewService(model))
	ctx := context.Background()
	upload := Upload{FileName: "panel.dxf", Data: dxfCircles(0, 500)}

	analysis, err := svc.Analyze(ctx, upload, "", pricing.Params{Material: "acrylic", ThicknessMM: 3, CuttingType: "laser"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, item := range analysis.Items {
		if item.Price == nil || *item.Price != 50 || *item.RawPrice != 42 {
			t.Fatalf("expected price 50 (raw 42), got %+v", item)
		}
	}

	analysis, err = svc.Analyze(ctx, upload, "", pricing.Params{Material: "acrylic"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, item := range analysis.Items {
		if item.Price != nil {
			t.Fatalf("expected no price with incomplete params, got %v", *item.Price)
		}
	}
}

func TestAnalyzeRecordsFailures(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx := context.Background()

	analysis, err := svc.Analyze(ctx, Upload{FileName: "broken.svg", Data: []byte(`<svg><path></svg>`)}, "", pricing.Params{})
	var parseErr *design.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if analysis.ID == "" {
		t.Fatalf("expected failed analysis to carry an id")
	}

	stored, err := repo.GetByID(ctx, analysis.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusFailed || stored.ErrorMessage == "" || len(stored.Items) != 0 {
		t.Fatalf("unexpected failed analysis %+v", stored)
	}

	_, err = svc.Analyze(ctx, Upload{FileName: "empty.dxf", Data: dxfCircles()}, "", pricing.Params{})
	if !errors.Is(err, design.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestAnalyzeRejectsUploads(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		upload Upload
		format design.Format
		params pricing.Params
		want   error
	}{
		{"empty data", Upload{FileName: "a.svg"}, "", pricing.Params{}, ErrEmptyUpload},
		{"no name", Upload{Data: []byte(sampleSVG)}, "", pricing.Params{}, ErrEmptyUpload},
		{"unknown extension", Upload{FileName: "a.png", Data: []byte("x")}, "", pricing.Params{}, design.ErrUnsupportedFormat},
		{"format lock", Upload{FileName: "a.svg", Data: []byte(sampleSVG)}, design.FormatDXF, pricing.Params{}, design.ErrUnsupportedFormat},
		{"traversal", Upload{FileName: "../a.svg", Data: []byte(sampleSVG)}, "", pricing.Params{}, ErrInvalidInput},
		{
			"bad params",
			Upload{FileName: "a.svg", Data: []byte(sampleSVG)},
			"",
			pricing.Params{Material: "mdf", ThicknessMM: 6, CuttingType: "cnc", Quantity: -2},
			ErrInvalidInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Analyze(ctx, tc.upload, tc.format, tc.params)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	list, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected uploads must not be recorded, got %d", len(list))
	}
}

func TestAnalyzeWithoutStore(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil, design.Analyzer{}, nil)
	analysis, err := svc.Analyze(context.Background(), Upload{FileName: "a.dxf", Data: dxfCircles(0)}, "", pricing.Params{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.StorageKey != "" || len(analysis.Items) != 1 {
		t.Fatalf("unexpected analysis %+v", analysis)
	}
}

func TestInspect(t *testing.T) {
	data := []byte("0\nSECTION\n2\nHEADER\n")
	info := Inspect("part.dxf", "", data)
	if info.FileType != "dxf" || info.ContentLength != len(data) {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ContentType != "image/vnd.dxf" {
		t.Fatalf("expected sniffed content type, got %q", info.ContentType)
	}
	if info.First10Bytes != "300a53454354494f4e0a" {
		t.Fatalf("unexpected leading bytes %q", info.First10Bytes)
	}
	if info.First20Chars != "0\nSECTION\n2\nHEADER\n" {
		t.Fatalf("unexpected leading text %q", info.First20Chars)
	}

	short := Inspect("x.bin", "application/octet-stream", []byte("tiny"))
	if short.FileType != "unknown" || short.First10Bytes != "" || short.ContentType != "application/octet-stream" {
		t.Fatalf("unexpected info %+v", short)
	}
}

func TestLeadingTextDropsInvalidUTF8(t *testing.T) {
	got := leadingText([]byte{'a', 0xff, 'b', 0xc3, 0xa9, 'c'}, 20)
	if got != "abéc" {
		t.Fatalf("expected abéc, got %q", got)
	}
	if got := leadingText([]byte("abcdef"), 3); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestMemoryRepoListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("part%d.svg", i)
		a, err := svc.Analyze(ctx, Upload{FileName: name, Data: []byte(sampleSVG)}, "", pricing.Params{})
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		ids = append(ids, a.ID)
	}

	list, err := svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(list))
	}
	for _, a := range list {
		if a.Items != nil || a.Report != nil {
			t.Fatalf("list must omit items and reports: %+v", a)
		}
	}
	if list[0].CreatedAt.Before(list[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Get(ctx, ids[0]); err != nil {
		t.Fatalf("Get: %v", err)
	}
}
