package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
)

// Renderer collects a submission through terminal prompts and renders forms
// and estimates as plain text. Render and RenderResult never touch the
// terminal, so the renderer can also serve text/plain HTTP clients.
type Renderer struct {
	driver   PromptDriver
	theme    Theme
	pageSize int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer. Without WithPromptDriver, Collect uses survey
// prompts on stdin/stdout.
func New(options ...Option) *Renderer {
	r := &Renderer{
		theme:    Theme{ErrorPrefix: "! "},
		pageSize: 10,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render lists the fields in order with their constraints.
func (r *Renderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	form = render.ApplyValues(form, opts)

	var b strings.Builder
	if form.Title != "" {
		b.WriteString(form.Title)
		b.WriteString("\n\n")
	}
	for idx, field := range form.Fields {
		fmt.Fprintf(&b, "%2d. %s (%s)%s\n", idx+1, field.Label, field.Name, describeConstraints(field))
		if field.Value != "" {
			fmt.Fprintf(&b, "    value: %s\n", field.Value)
		}
		for _, msg := range field.Errors {
			fmt.Fprintf(&b, "    %s%s\n", r.theme.ErrorPrefix, msg)
		}
	}
	for _, msg := range render.MergeFormErrors(opts.FormErrors) {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, msg)
	}
	return []byte(b.String()), nil
}

// RenderResult prints the price and the details, or the error message.
func (r *Renderer) RenderResult(_ context.Context, _ model.FormModel, estimate model.Estimate, _ render.RenderOptions) ([]byte, error) {
	var b strings.Builder
	if !estimate.OK() {
		fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, estimate.Error)
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "Estimated Market Price: %s\n", estimate.Formatted)
	if len(estimate.Details) == 0 {
		return []byte(b.String()), nil
	}

	width := 0
	for _, detail := range estimate.Details {
		if len(detail.Label) > width {
			width = len(detail.Label)
		}
	}
	b.WriteString("\n")
	for _, detail := range estimate.Details {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, detail.Label, detail.Value)
	}
	return []byte(b.String()), nil
}

// Collect prompts for every field in form order and returns the answers as a
// form submission. opts.Values pre-fill defaults. Derived read-only fields are
// left blank so the server computes them.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (url.Values, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	form = render.ApplyValues(form, opts)
	values := url.Values{}
	for _, field := range form.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var (
			answer string
			err    error
		)
		switch {
		case field.Readonly:
			if from := field.Metadata[model.MetadataDeriveFrom]; from != "" {
				_ = r.info(ctx, fmt.Sprintf("%s is calculated from %s", field.Label, from))
			}
			continue
		case field.Type == model.FieldTypeSelect:
			answer, err = r.promptSelect(ctx, field)
		case field.Numeric:
			answer, err = r.promptNumber(ctx, field)
		default:
			answer, err = r.driver.Input(ctx, InputConfig{
				Message: field.Label,
				Default: field.Value,
				Help:    plainHelp(field),
			})
		}
		if err != nil {
			return nil, err
		}
		values.Set(field.Name, strings.TrimSpace(answer))
	}
	return values, nil
}

func (r *Renderer) promptSelect(ctx context.Context, field model.Field) (string, error) {
	labels := make([]string, len(field.Options))
	defaultIdx := -1
	for idx, opt := range field.Options {
		labels[idx] = opt.Label
		if labels[idx] == "" {
			labels[idx] = opt.Value
		}
		if opt.Selected {
			defaultIdx = idx
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: defaultIdx,
			Help:         plainHelp(field),
			PageSize:     r.pageSize,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			_ = r.info(ctx, fmt.Sprintf("%sInvalid %s selection", r.theme.ErrorPrefix, field.Label))
			continue
		}
		return field.Options[idx].Value, nil
	}
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field) (string, error) {
	bounds := boundsFor(field)
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: field.Label,
			Default: field.Value,
			Help:    plainHelp(field),
		})
		if err != nil {
			return "", err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return "", nil
		}
		if err := bounds.validate(input); err != nil {
			_ = r.info(ctx, fmt.Sprintf("%sInvalid %s: %v", r.theme.ErrorPrefix, field.Label, err))
			continue
		}
		return input, nil
	}
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

type numberBounds struct {
	min, max *float64
}

func boundsFor(field model.Field) numberBounds {
	var bounds numberBounds
	if raw, ok := field.Rule(model.ValidationRuleMin); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			bounds.min = &v
		}
	}
	if raw, ok := field.Rule(model.ValidationRuleMax); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			bounds.max = &v
		}
	}
	return bounds
}

func (b numberBounds) validate(raw string) error {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.New("not a number")
	}
	if b.min != nil && v < *b.min {
		return fmt.Errorf("min %v", *b.min)
	}
	if b.max != nil && v > *b.max {
		return fmt.Errorf("max %v", *b.max)
	}
	return nil
}

func describeConstraints(field model.Field) string {
	var parts []string
	switch {
	case field.Type == model.FieldTypeSelect:
		values := make([]string, len(field.Options))
		for idx, opt := range field.Options {
			values[idx] = opt.Value
		}
		parts = append(parts, "one of "+strings.Join(values, ", "))
	case field.Numeric:
		parts = append(parts, "number")
	default:
		parts = append(parts, "text")
	}
	if min, ok := field.Rule(model.ValidationRuleMin); ok {
		parts = append(parts, "min "+min)
	}
	if max, ok := field.Rule(model.ValidationRuleMax); ok {
		parts = append(parts, "max "+max)
	}
	if field.Readonly {
		parts = append(parts, "read-only")
	}
	return ": " + strings.Join(parts, "; ")
}

func plainHelp(field model.Field) string {
	if field.Placeholder != "" {
		return field.Placeholder
	}
	return stripTags(field.Description)
}

var strictPolicy = bluemonday.StrictPolicy()

func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
