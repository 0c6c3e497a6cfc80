package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const shippedModel = "../../data/pricing_model.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func twoCirclesDXF() string {
	return "0\nSECTION\n2\nHEADER\n9\n$INSUNITS\n70\n4\n0\nENDSEC\n" +
		"0\nSECTION\n2\nENTITIES\n" +
		"0\nCIRCLE\n8\n0\n10\n0\n20\n0\n40\n10\n" +
		"0\nCIRCLE\n8\n0\n10\n500\n20\n0\n40\n10\n" +
		"0\nENDSEC\n0\nEOF\n"
}

func TestAnalyzeCommandSVG(t *testing.T) {
	path := writeFile(t, "sign.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100"><path d="M0 0 L10 10"/></svg>`)

	out, err := run(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got analysisOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if got.File != "sign.svg" || got.Format != "svg" || got.Jobs != 1 || got.Items[0].WidthMM != 200 {
		t.Fatalf("unexpected output %+v", got)
	}
	if got.Items[0].Price != nil {
		t.Fatalf("expected no price without --material")
	}
}

func TestAnalyzeCommandDXFThresholdAndReport(t *testing.T) {
	path := writeFile(t, "panel.dxf", twoCirclesDXF())

	out, err := run(t, "analyze", path, "--report")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got analysisOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Jobs != 2 || got.Report == nil || len(got.Report.Clusters) != 2 {
		t.Fatalf("unexpected output %+v", got)
	}

	out, err = run(t, "analyze", path, "--threshold", "1000")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	got = analysisOutput{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Jobs != 1 || got.Report != nil {
		t.Fatalf("expected a single job without report, got %+v", got)
	}
}

func TestAnalyzeCommandPricesWithModel(t *testing.T) {
	path := writeFile(t, "panel.dxf", twoCirclesDXF())

	out, err := run(t, "analyze", path, "--model", shippedModel, "--material", "acrylic", "--thickness", "3", "--cutting-type", "laser")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got analysisOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	for _, item := range got.Items {
		if item.Price == nil || *item.Price <= 0 {
			t.Fatalf("expected a positive price, got %+v", item)
		}
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	if _, err := run(t, "analyze"); err == nil {
		t.Fatalf("expected error without a file argument")
	}
	if _, err := run(t, "analyze", filepath.Join(t.TempDir(), "missing.svg")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
	bad := writeFile(t, "notes.txt", "hello")
	if _, err := run(t, "analyze", bad); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestPriceCommand(t *testing.T) {
	out, err := run(t, "price", "--model", shippedModel, "--material", "acrylic", "--thickness", "3", "--cutting-type", "laser", "--letters", "5")
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	var got struct {
		RawPrice float64 `json:"raw_price"`
		Price    float64 `json:"price"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Price <= 0 || got.Price < got.RawPrice {
		t.Fatalf("unexpected quote %+v", got)
	}

	if _, err := run(t, "price", "--model", shippedModel, "--thickness", "3", "--cutting-type", "laser"); err == nil {
		t.Fatalf("expected validation error without material")
	}
	if _, err := run(t, "price", "--model", "missing.yaml", "--material", "mdf"); err == nil {
		t.Fatalf("expected error for a missing model")
	}
}
