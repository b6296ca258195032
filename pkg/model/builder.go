package model

import (
	"github.com/goliatone/go-carvalue/internal/model"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

// Builder converts a field schema into a form model.
type Builder interface {
	Build(s schema.Schema) (FormModel, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	endpoint string
	method   string
	labeler  func(string) string
}

// WithEndpoint sets the form action. Defaults to /predict.
func WithEndpoint(endpoint string) BuilderOption {
	return func(opts *builderOptions) {
		opts.endpoint = endpoint
	}
}

// WithMethod sets the form method. Defaults to POST.
func WithMethod(method string) BuilderOption {
	return func(opts *builderOptions) {
		opts.method = method
	}
}

// WithLabeler overrides the labels declared by the schema.
func WithLabeler(labeler func(string) string) BuilderOption {
	return func(opts *builderOptions) {
		opts.labeler = labeler
	}
}

// NewBuilder returns a Builder backed by the internal implementation.
func NewBuilder(options ...BuilderOption) Builder {
	cfg := builderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	return model.New(model.Options{
		Endpoint: cfg.endpoint,
		Method:   cfg.method,
		Labeler:  cfg.labeler,
	})
}
