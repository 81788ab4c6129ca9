package sync

import (
	"testing"

	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(Options{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Mode != policy.ModeDefault {
		t.Errorf("mode = %q, want default", cfg.Mode)
	}
	if cfg.Concurrency != utils.DefaultConcurrency {
		t.Errorf("concurrency = %d, want %d", cfg.Concurrency, utils.DefaultConcurrency)
	}
	if cfg.FolderConcurrency != utils.DefaultConcurrency/2 {
		t.Errorf("folder concurrency = %d, want half of leaf", cfg.FolderConcurrency)
	}
	if cfg.Exports[types.KindDocument].Extension != ".docx" {
		t.Errorf("document export = %+v, want .docx", cfg.Exports[types.KindDocument])
	}
	if cfg.Exports[types.KindSpreadsheet].Extension != ".xlsx" {
		t.Errorf("spreadsheet export = %+v, want .xlsx", cfg.Exports[types.KindSpreadsheet])
	}
}

func TestNewConfigRejectsUnknownMode(t *testing.T) {
	if _, err := NewConfig(Options{Mode: "newest-wins"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestNewConfigClampsConcurrency(t *testing.T) {
	cfg, err := NewConfig(Options{Concurrency: -3})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Concurrency != 1 || cfg.FolderConcurrency != 1 {
		t.Errorf("got %d/%d, want 1/1", cfg.Concurrency, cfg.FolderConcurrency)
	}
}

func TestNewConfigExportOverride(t *testing.T) {
	cfg, err := NewConfig(Options{ExportFormats: map[string]string{"document": "pdf"}})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	target := cfg.Exports[types.KindDocument]
	if target.Extension != ".pdf" || target.MimeType != "application/pdf" {
		t.Errorf("document export = %+v, want pdf", target)
	}
	// Unoverridden kinds keep their defaults.
	if cfg.Exports[types.KindPresentation].Extension != ".pptx" {
		t.Errorf("presentation export = %+v, want .pptx", cfg.Exports[types.KindPresentation])
	}
}

func TestNewConfigRejectsUnknownFormat(t *testing.T) {
	if _, err := NewConfig(Options{ExportFormats: map[string]string{"document": "wav"}}); err == nil {
		t.Fatal("expected error for unknown export format")
	}
}

func TestNewConfigRejectsUnknownKind(t *testing.T) {
	if _, err := NewConfig(Options{ExportFormats: map[string]string{"video": "pdf"}}); err == nil {
		t.Fatal("expected error for unknown export kind")
	}
}
