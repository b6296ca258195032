package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carvalue/pkg/openapi"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

func buildAndReload(t *testing.T, options ...openapi.Option) *openapi3.T {
	t.Helper()

	s, err := schema.Default()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	doc, err := openapi.Build(context.Background(), s, options...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loader := openapi3.NewLoader()
	loader.Context = context.Background()
	reloaded, err := loader.LoadFromData(raw)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := reloaded.Validate(context.Background(), openapi3.DisableExamplesValidation()); err != nil {
		t.Fatalf("reloaded document invalid: %v", err)
	}
	return reloaded
}

func requestSchema(t *testing.T, doc *openapi3.T, path string) *openapi3.Schema {
	t.Helper()
	item := doc.Paths.Value(path)
	if item == nil || item.Post == nil {
		t.Fatalf("expected POST %s", path)
	}
	media := item.Post.RequestBody.Value.Content.Get(openapi.FormContentType)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		t.Fatalf("expected %s request body", openapi.FormContentType)
	}
	return media.Schema.Value
}

func TestBuild_RequestProperties(t *testing.T) {
	doc := buildAndReload(t)
	body := requestSchema(t, doc, openapi.PredictPath)

	if got := len(body.Properties); got != 22 {
		t.Fatalf("expected 22 properties, got %d", got)
	}

	brand := body.Properties["Brand"].Value
	if brand.Title != "Car Brand" {
		t.Fatalf("brand title: %q", brand.Title)
	}
	if len(brand.Enum) == 0 || brand.Enum[0] != "Toyota" {
		t.Fatalf("brand enum: %v", brand.Enum)
	}

	year := body.Properties["Year"].Value
	if year.Min == nil || *year.Min != 1990 || year.Max == nil || *year.Max != 2026 {
		t.Fatalf("year bounds: min=%v max=%v", year.Min, year.Max)
	}

	doors := body.Properties["Doors"].Value
	if diff := cmp.Diff([]any{2.0, 3.0, 4.0, 5.0}, doors.Enum); diff != "" {
		t.Fatalf("doors enum mismatch (-want +got):\n%s", diff)
	}

	age := body.Properties["CarAge"].Value
	if age.Description != "Calculated from Year when empty." {
		t.Fatalf("car age description: %q", age.Description)
	}
}

func TestBuild_ColumnOrderExtension(t *testing.T) {
	doc := buildAndReload(t)
	body := requestSchema(t, doc, openapi.PredictPath)

	raw, ok := body.Extensions[openapi.ColumnOrderExtension].([]any)
	if !ok {
		t.Fatalf("expected column order extension, got %#v", body.Extensions)
	}
	got := make([]string, 0, len(raw))
	for _, v := range raw {
		got = append(got, v.(string))
	}

	s, _ := schema.Default()
	if diff := cmp.Diff(s.Columns(), got); diff != "" {
		t.Fatalf("column order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Responses(t *testing.T) {
	doc := buildAndReload(t)
	op := doc.Paths.Value(openapi.PredictPath).Post
	if op.OperationID != openapi.PredictID {
		t.Fatalf("operation id: %q", op.OperationID)
	}

	for _, status := range []int{200, 422, 503} {
		resp := op.Responses.Status(status)
		if resp == nil || resp.Value == nil {
			t.Fatalf("missing %d response", status)
		}
		if resp.Value.Content.Get(openapi.JSONContentType) == nil {
			t.Fatalf("%d response lacks a JSON body", status)
		}
	}
	if op.Responses.Status(200).Value.Content.Get(openapi.HTMLContentType) == nil {
		t.Fatal("200 response lacks an HTML body")
	}
}

func TestBuild_Options(t *testing.T) {
	doc := buildAndReload(t,
		openapi.WithInfo("Vehicle API", "2.1.0"),
		openapi.WithPath("/api/predict"),
		openapi.WithServer("https://cars.example.com"),
	)

	if doc.Info.Title != "Vehicle API" || doc.Info.Version != "2.1.0" {
		t.Fatalf("info: %+v", doc.Info)
	}
	if doc.Paths.Value("/api/predict") == nil {
		t.Fatal("expected custom path")
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://cars.example.com" {
		t.Fatalf("servers: %+v", doc.Servers)
	}
}

func TestBuild_EmptySchema(t *testing.T) {
	_, err := openapi.Build(context.Background(), schema.Schema{})
	if !errors.Is(err, schema.ErrEmptySchema) {
		t.Fatalf("expected ErrEmptySchema, got %v", err)
	}
}
