package carvalue

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carvalue/pkg/orchestrator"
	"github.com/goliatone/go-carvalue/pkg/testsupport"
)

func TestRuntimeAssetsFSContainsRuntime(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "carvalue.js")
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	for _, want := range []string{"data-derive", "data-base-year", "Analyzing...", "submitBtn"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("runtime script missing %q", want)
		}
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	for _, name := range []string{"templates/form.tmpl", "templates/result.tmpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("template %s: %v", name, err)
		}
	}
}

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"json", "tui", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("renderers (-want +got):\n%s", diff)
	}
}

func TestGenerateHTML_WithDefaultTheme(t *testing.T) {
	out, err := GenerateHTML(context.Background(),
		WithDefaultTheme("/runtime", "dark"),
		orchestrator.WithAssetBase("/runtime"),
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, want := range []string{`data-theme="dark"`, `src="/runtime/carvalue.js"`, `--color-surface: #1f2937;`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %s in output", want)
		}
	}
}

func TestEstimateFile(t *testing.T) {
	path := testsupport.WriteArtifact(t, "", testsupport.VehicleArtifact())

	estimate := EstimateFile(context.Background(), path, testsupport.Submission())
	if !estimate.OK() {
		t.Fatalf("unexpected error: %s", estimate.Error)
	}
	if estimate.Formatted != testsupport.SubmissionFormatted {
		t.Fatalf("formatted: want %s, got %s", testsupport.SubmissionFormatted, estimate.Formatted)
	}
}

func TestEstimateFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	estimate := EstimateFile(context.Background(), path, testsupport.Submission())
	if estimate.Error != "Model file not found. Please upload model.json." {
		t.Fatalf("message: got %q", estimate.Error)
	}
}
