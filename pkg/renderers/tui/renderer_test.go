package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	inputPos     int
	selectPos    int
	prompts      []string
	infoMessages []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func testForm() model.FormModel {
	return model.FormModel{
		Title: "Car Price Estimator",
		Fields: []model.Field{
			{Name: "Brand", Type: model.FieldTypeSelect, Label: "Car Brand", Options: []model.Option{{Value: "Toyota", Label: "Toyota"}, {Value: "BMW", Label: "BMW"}}},
			{Name: "Year", Type: model.FieldTypeNumber, Label: "Year", Numeric: true, Validations: []model.ValidationRule{
				{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "1990"}},
				{Kind: model.ValidationRuleMax, Params: map[string]string{"value": "2026"}},
			}},
			{Name: "CarAge", Type: model.FieldTypeNumber, Label: "Vehicle Age", Numeric: true, Readonly: true, Metadata: map[string]string{model.MetadataDeriveFrom: "Year"}},
			{Name: "Model", Type: model.FieldTypeText, Label: "Model Name"},
		},
	}
}

func TestCollect_PromptsInOrderAndRetriesInvalidNumbers(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"1800", "abc", "2018", " Corolla "},
		selectIdx: []int{1},
	}
	r := New(WithPromptDriver(driver))

	values, err := r.Collect(context.Background(), testForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if got := values.Get("Brand"); got != "BMW" {
		t.Fatalf("brand: got %q", got)
	}
	if got := values.Get("Year"); got != "2018" {
		t.Fatalf("year: got %q", got)
	}
	if got := values.Get("Model"); got != "Corolla" {
		t.Fatalf("model: got %q", got)
	}
	if _, ok := values["CarAge"]; ok {
		t.Fatal("derived field should not be prompted")
	}

	wantPrompts := []string{"Car Brand", "Year", "Year", "Year", "Model Name"}
	if diff := cmp.Diff(wantPrompts, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 3 {
		t.Fatalf("expected two validation messages and one derivation note, got %v", driver.infoMessages)
	}
}

func TestCollect_PropagatesAbort(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}))
	_, err := r.Collect(context.Background(), testForm(), render.RenderOptions{})
	if err == nil {
		t.Fatal("expected error when driver fails")
	}
}

func TestRenderResult(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}))

	out, err := r.RenderResult(context.Background(), testForm(), model.Estimate{
		Formatted: "$12,345.68",
		Details: []model.Detail{
			{Name: "Brand", Label: "Car Brand", Value: "BMW"},
			{Name: "Year", Label: "Year", Value: "2018"},
		},
	}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render result: %v", err)
	}
	want := "Estimated Market Price: $12,345.68\n\n  Car Brand  BMW\n  Year       2018\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	out, err = r.RenderResult(context.Background(), testForm(), model.Estimate{Error: "Prediction Error: boom"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render error result: %v", err)
	}
	if string(out) != "! Prediction Error: boom\n" {
		t.Fatalf("unexpected error output %q", out)
	}
}

func TestRender_DescribesFields(t *testing.T) {
	r := New(WithPromptDriver(&stubDriver{}))
	out, err := r.Render(context.Background(), testForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	for _, want := range []string{
		" 1. Car Brand (Brand): one of Toyota, BMW",
		" 2. Year (Year): number; min 1990; max 2026",
		" 3. Vehicle Age (CarAge): number; read-only",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestStripTags(t *testing.T) {
	if got := stripTags("Litres per <abbr title=\"kilometre\">100 km</abbr> &amp; more"); got != "Litres per 100 km & more" {
		t.Fatalf("unexpected %q", got)
	}
}
