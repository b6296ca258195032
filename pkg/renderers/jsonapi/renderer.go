// Package jsonapi renders form models and estimates as JSON for API clients.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
)

// Renderer emits JSON documents.
type Renderer struct {
	indent string
}

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints output using indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the JSON renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

type formDocument struct {
	Form   model.FormModel     `json:"form"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// Render describes the form so clients can build their own UI.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	return r.encode(formDocument{
		Form:   render.ApplyValues(form, options),
		Errors: options.Errors,
	})
}

type resultDocument struct {
	model.Estimate
	Columns []string `json:"columns,omitempty"`
}

// RenderResult encodes the estimate. Columns lists the field order the
// details follow.
func (r *Renderer) RenderResult(_ context.Context, form model.FormModel, estimate model.Estimate, _ render.RenderOptions) ([]byte, error) {
	doc := resultDocument{Estimate: estimate}
	if estimate.OK() {
		doc.Columns = make([]string, 0, len(form.Fields))
		for _, field := range form.Fields {
			doc.Columns = append(doc.Columns, field.Name)
		}
	}
	return r.encode(doc)
}

func (r *Renderer) encode(v any) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(v, "", r.indent)
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonapi renderer: encode: %w", err)
	}
	return append(out, '\n'), nil
}
