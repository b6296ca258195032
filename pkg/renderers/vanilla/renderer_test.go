package vanilla_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/renderers/vanilla"
	"github.com/goliatone/go-carvalue/pkg/schema"
	"github.com/goliatone/go-carvalue/pkg/themes"
)

func defaultForm(t *testing.T) model.FormModel {
	t.Helper()
	s, err := schema.Default()
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}
	form, err := model.NewBuilder().Build(s)
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	return form
}

func newRenderer(t *testing.T, options ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	renderer, err := vanilla.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func TestRender_FieldsFollowSchemaOrder(t *testing.T) {
	form := defaultForm(t)
	out, err := newRenderer(t).Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	last := -1
	for _, field := range form.Fields {
		marker := `data-field="` + field.Name + `"`
		idx := strings.Index(html, marker)
		if idx < 0 {
			t.Fatalf("field %s missing from output", field.Name)
		}
		if idx < last {
			t.Fatalf("field %s rendered out of order", field.Name)
		}
		last = idx
	}

	for _, want := range []string{
		`<form id="predictForm"`,
		`action="/predict" method="post"`,
		`<select id="Brand" name="Brand">`,
		`<option value="Toyota">Toyota</option>`,
		`<select id="Doors" name="Doors" data-value-type="number">`,
		`type="number" min="1990" max="2026"`,
		`step="0.1"`,
		`readonly data-derive="age" data-derive-from="Year"`,
		`placeholder="e.g. Corolla, Civic, F-150"`,
		`<span class="btn-text">Estimate Price</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestRender_PrefillsValuesAndThemes(t *testing.T) {
	form := defaultForm(t)
	selector := themes.NewSelector(themes.VariantDark, themes.DefaultManifest("/runtime"))
	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select theme: %v", err)
	}

	out, err := newRenderer(t).Render(context.Background(), form, render.RenderOptions{
		Values:     map[string]any{"Brand": "BMW", "Year": "2019"},
		Errors:     map[string][]string{"Year": {"could not convert"}},
		FormErrors: []string{"Please review the highlighted fields."},
		Theme:      themes.RendererConfig(selection),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`<option value="BMW" selected>BMW</option>`,
		`value="2019"`,
		`<small class="cv-error">could not convert</small>`,
		`Please review the highlighted fields.`,
		`data-theme="dark"`,
		`--color-surface: #1f2937;`,
		`<script src="/runtime/carvalue.js" defer></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestRenderResult(t *testing.T) {
	form := defaultForm(t)
	renderer := newRenderer(t)

	t.Run("prediction", func(t *testing.T) {
		out, err := renderer.RenderResult(context.Background(), form, model.Estimate{
			Prediction: 23456.789,
			Formatted:  "$23,456.79",
			Details: []model.Detail{
				{Name: "Brand", Label: "Car Brand", Value: "Toyota"},
				{Name: "Year", Label: "Year of Manufacture", Value: "2018"},
			},
		}, render.RenderOptions{})
		if err != nil {
			t.Fatalf("render result: %v", err)
		}
		html := string(out)
		if !strings.Contains(html, "$23,456.79") {
			t.Fatalf("expected formatted price in output")
		}
		if strings.Index(html, `data-field="Brand"`) > strings.Index(html, `data-field="Year"`) {
			t.Fatalf("details rendered out of order")
		}
		if strings.Contains(html, `role="alert"`) {
			t.Fatalf("unexpected error block")
		}
	})

	t.Run("error", func(t *testing.T) {
		out, err := renderer.RenderResult(context.Background(), form, model.Estimate{
			Error:     "Model file not found. Please upload model.json.",
			ErrorKind: model.ErrorKindModelUnavailable,
		}, render.RenderOptions{})
		if err != nil {
			t.Fatalf("render result: %v", err)
		}
		html := string(out)
		if !strings.Contains(html, "Model file not found. Please upload model.json.") {
			t.Fatalf("expected error message in output")
		}
		if !strings.Contains(html, `data-error-kind="model_unavailable"`) {
			t.Fatalf("expected error kind attribute")
		}
		if strings.Contains(html, `class="cv-result__price"`) {
			t.Fatalf("error page must not show a price")
		}
	})
}

func TestRender_MissingTemplate(t *testing.T) {
	renderer := newRenderer(t, vanilla.WithTemplatesFS(fstest.MapFS{
		"templates/form.tmpl": {Data: []byte(`{{ form.title }}`)},
	}))

	out, err := renderer.Render(context.Background(), defaultForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "Car Price Estimator" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = renderer.RenderResult(context.Background(), defaultForm(t), model.Estimate{}, render.RenderOptions{})
	if err == nil || !strings.Contains(err.Error(), "result.tmpl") {
		t.Fatalf("expected missing template error, got %v", err)
	}
}

func TestAssetsFSContainsStylesheet(t *testing.T) {
	f, err := vanilla.AssetsFS().Open(vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	f.Close()
}
