package docpdf_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/coregx/docpdf"
	"github.com/coregx/docpdf/dto"
	"github.com/coregx/docpdf/logging"
)

// TestEmit_EmptyDocument covers SPEC_FULL.md §8 scenario 1: a DTO with zero
// pages and zero fonts must still produce a structurally valid PDF.
func TestEmit_EmptyDocument(t *testing.T) {
	doc, err := docpdf.NewDocument(dto.Dto{}, docpdf.NewPDFSettings(), docpdf.Info{})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	out, err := doc.Emit(context.Background())
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	s := string(out)
	if !strings.HasPrefix(s, "%PDF-1.3\n%\xE2\xE3\xCF\xD3\n") {
		t.Errorf("expected PDF header, got prefix %q", s[:min(40, len(s))])
	}
	if !strings.HasSuffix(strings.TrimRight(s, "\n"), "%%EOF") {
		t.Errorf("expected file to end with %%%%EOF, got suffix %q", s[max(0, len(s)-20):])
	}
	if !strings.Contains(s, "/Type/Catalog") && !strings.Contains(s, "/Type /Catalog") {
		t.Error("expected a Catalog object")
	}
	if !strings.Contains(s, "/Count 0") {
		t.Error("expected an empty pages tree with /Count 0")
	}
	if strings.Contains(s, "/Kids") {
		t.Error("an empty pages tree must not emit /Kids")
	}
	if !strings.Contains(s, "xref\n0 3\n") {
		t.Error("expected a 3-row xref table (free entry + catalog + pages)")
	}
}

func TestEmit_NoInfoFieldsSet_OmitsInfoObject(t *testing.T) {
	doc, err := docpdf.NewDocument(dto.Dto{}, docpdf.NewPDFSettings(), docpdf.Info{})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	out, err := doc.Emit(context.Background())
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(string(out), "/Info") {
		t.Error("expected no /Info line when no Info fields are set")
	}
}

func TestEmit_InfoTitleSet_EmitsInfoObject(t *testing.T) {
	info := docpdf.Info{Title: "Quarterly Report"}
	doc, err := docpdf.NewDocument(dto.Dto{}, docpdf.NewPDFSettings(), info)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	out, err := doc.Emit(context.Background())
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "/Info") {
		t.Error("expected a /Info trailer line when Title is set")
	}
	if !strings.Contains(s, "Quarterly Report") {
		t.Error("expected the title string in the output")
	}
}

func TestEmit_RespectsContextCancellation(t *testing.T) {
	doc, err := docpdf.NewDocument(dto.Dto{}, docpdf.NewPDFSettings(), docpdf.Info{})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doc.Emit(ctx); err == nil {
		t.Error("expected Emit to fail with a canceled context")
	}
}

// TestEmit_LogsEveryPipelinePhase exercises the logging package against the
// real build pipeline: NewDocument and Emit together must touch every named
// phase, not just the ones a unit test drives directly.
func TestEmit_LogsEveryPipelinePhase(t *testing.T) {
	oldLogger := logging.Logger()
	defer func() { logging.SetLogger(oldLogger) }()

	handler := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelDebug})
	logging.SetLogger(slog.New(handler))

	doc, err := docpdf.NewDocument(dto.Dto{}, docpdf.NewPDFSettings(), docpdf.Info{})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if _, err := doc.Emit(context.Background()); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	for _, phase := range logging.Phases {
		if phase == "page-build" || phase == "font-build" {
			continue // empty document has no pages or fonts to build
		}
		if !handler.ContainsPhase(phase, "") {
			t.Errorf("expected a log line tagged phase=%s from an empty-document build, got %q", phase, handler.String())
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
