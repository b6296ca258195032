package openapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

const (
	Version         = "3.0.3"
	PredictPath     = "/predict"
	PredictID       = "predictPrice"
	FormContentType = "application/x-www-form-urlencoded"
	JSONContentType = "application/json"
	HTMLContentType = "text/html"

	// ColumnOrderExtension lists the request properties in the order the
	// model consumes them. Schema properties are unordered.
	ColumnOrderExtension = "x-column-order"
)

// Option configures Build.
type Option func(*config)

type config struct {
	title   string
	version string
	path    string
	servers []string
}

// WithInfo overrides the document title and version.
func WithInfo(title, version string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(title) != "" {
			cfg.title = strings.TrimSpace(title)
		}
		if strings.TrimSpace(version) != "" {
			cfg.version = strings.TrimSpace(version)
		}
	}
}

// WithPath changes the path the prediction operation is mounted on.
func WithPath(path string) Option {
	return func(cfg *config) {
		if strings.HasPrefix(path, "/") {
			cfg.path = path
		}
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(url) != "" {
			cfg.servers = append(cfg.servers, strings.TrimSpace(url))
		}
	}
}

// Build returns a validated document describing POST /predict for s.
func Build(ctx context.Context, s schema.Schema, options ...Option) (*openapi3.T, error) {
	cfg := config{title: s.Title, version: "1.0.0", path: PredictPath}
	if cfg.title == "" {
		cfg.title = "Car Price Estimator"
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("openapi: %w", schema.ErrEmptySchema)
	}

	body := openapi3.NewObjectSchema()
	body.Description = "One value per column."
	body.Extensions = map[string]any{ColumnOrderExtension: s.Columns()}
	for _, field := range s.Fields() {
		body.WithProperty(field.Name, fieldSchema(field))
	}

	op := openapi3.NewOperation()
	op.OperationID = PredictID
	op.Summary = "Estimate a vehicle price"
	op.Description = s.Subtitle
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.NewContentWithSchema(body, []string{FormContentType})),
	}

	estimate := openapi3.NewSchemaRef("", estimateSchema())
	okContent := openapi3.NewContentWithJSONSchemaRef(estimate)
	okContent[HTMLContentType] = openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema())

	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Estimate, or for HTML clients a result page that may carry an error message").
			WithContent(okContent)}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("A value could not be coerced or the model rejected the record").
			WithContent(openapi3.NewContentWithJSONSchemaRef(estimate))}),
		openapi3.WithStatus(503, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("The model artifact is missing or invalid").
			WithContent(openapi3.NewContentWithJSONSchemaRef(estimate))}),
	)

	doc := &openapi3.T{
		OpenAPI: Version,
		Info: &openapi3.Info{
			Title:   cfg.title,
			Version: cfg.version,
		},
		Paths: openapi3.NewPaths(openapi3.WithPath(cfg.path, &openapi3.PathItem{Post: op})),
	}
	for _, url := range cfg.servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: url})
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return doc, nil
}

func fieldSchema(field schema.Field) *openapi3.Schema {
	var out *openapi3.Schema
	if field.Numeric() {
		out = openapi3.NewFloat64Schema()
		if field.Min != nil {
			out.WithMin(*field.Min)
		}
		if field.Max != nil {
			out.WithMax(*field.Max)
		}
	} else {
		out = openapi3.NewStringSchema()
	}

	if len(field.Options) > 0 {
		values := make([]any, 0, len(field.Options))
		for _, opt := range field.Options {
			if field.Numeric() {
				if n, err := strconv.ParseFloat(opt.Value, 64); err == nil {
					values = append(values, n)
				}
				continue
			}
			values = append(values, opt.Value)
		}
		out.WithEnum(values...)
	}

	out.Title = field.Label
	switch {
	case field.Derive != nil:
		out.Description = fmt.Sprintf("Calculated from %s when empty.", field.Derive.From)
	case field.Placeholder != "":
		out.Description = field.Placeholder
	}
	return out
}

func estimateSchema() *openapi3.Schema {
	detail := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema()).
		WithProperty("value", openapi3.NewStringSchema())

	return openapi3.NewObjectSchema().
		WithProperty("prediction", openapi3.NewFloat64Schema()).
		WithProperty("formatted", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewArraySchema().WithItems(detail)).
		WithProperty("columns", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())).
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("errorKind", openapi3.NewStringSchema().WithEnum(
			string(model.ErrorKindModelUnavailable),
			string(model.ErrorKindInput),
			string(model.ErrorKindPrediction),
		)).
		WithProperty("field", openapi3.NewStringSchema())
}
