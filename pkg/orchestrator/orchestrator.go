package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"

	theme "github.com/goliatone/go-theme"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-carvalue/pkg/estimator"
	"github.com/goliatone/go-carvalue/pkg/format"
	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/record"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/renderers/vanilla"
	"github.com/goliatone/go-carvalue/pkg/schema"
	"github.com/goliatone/go-carvalue/pkg/themes"
)

const (
	defaultRendererName = "vanilla"
	tracerName          = "github.com/goliatone/go-carvalue/pkg/orchestrator"
)

// ModelSource hands out the current estimator model.
type ModelSource interface {
	Model(ctx context.Context) (estimator.Model, error)
}

// Recorder persists estimates. Failures are logged and never surface to the
// user.
type Recorder interface {
	RecordEstimate(ctx context.Context, rec record.Record, estimate model.Estimate) error
}

// Orchestrator coordinates schema, model builder, renderers and the estimator.
// Missing dependencies fall back to the built-in implementations (embedded
// schema, vanilla renderer) so New works without options.
type Orchestrator struct {
	schema          schema.Schema
	schemaSet       bool
	models          ModelSource
	builder         model.Builder
	registry        *render.Registry
	defaultRenderer string
	decorators      []model.Decorator
	recorder        Recorder
	logger          *slog.Logger
	tracer          trace.Tracer
	baseYear        int
	deriveFields    bool
	formatter       *format.Formatter
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	assetBase       string
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		baseYear:        record.DefaultBaseYear,
		deriveFields:    true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request carries per-call rendering choices.
type Request struct {
	// Renderer names the renderer to use. If empty, the configured default
	// renderer is used.
	Renderer string

	// ThemeName and ThemeVariant override the configured theme.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries prefilled values and server-side errors. Theme and
	// AssetBase are filled in when left empty.
	RenderOptions render.RenderOptions
}

// Schema returns the field schema the orchestrator serves.
func (o *Orchestrator) Schema() schema.Schema {
	return o.schema
}

// Registry exposes the renderer registry for content negotiation.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// DefaultRenderer names the renderer used when a request names none.
func (o *Orchestrator) DefaultRenderer() string {
	return o.defaultRenderer
}

// Form builds the decorated form model.
func (o *Orchestrator) Form(ctx context.Context) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	form, err := o.builder.Build(o.schema)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, err
	}
	return form, nil
}

// RenderForm renders the empty (or prefilled) input form.
func (o *Orchestrator) RenderForm(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.Form(ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	opts, err := o.renderOptions(req)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// RenderEstimate runs Estimate for values and renders the result. The
// returned Estimate lets callers choose a status code; a rendering failure is
// the only error.
func (o *Orchestrator) RenderEstimate(ctx context.Context, req Request, values url.Values) ([]byte, model.Estimate, error) {
	form, err := o.Form(ctx)
	if err != nil {
		return nil, model.Estimate{}, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, model.Estimate{}, err
	}

	_, estimate := o.Estimate(ctx, values)

	if req.RenderOptions.Values == nil {
		req.RenderOptions.Values = submittedValues(values)
	}
	if estimate.Field != "" {
		mapping := render.MapErrorPayload(form, map[string][]string{estimate.Field: {estimate.Error}})
		if req.RenderOptions.Errors == nil {
			req.RenderOptions.Errors = make(map[string][]string)
		}
		for name, messages := range mapping.Fields {
			req.RenderOptions.Errors[name] = append(req.RenderOptions.Errors[name], messages...)
		}
		req.RenderOptions.FormErrors = render.MergeFormErrors(req.RenderOptions.FormErrors, mapping.Form...)
	}
	opts, err := o.renderOptions(req)
	if err != nil {
		return nil, estimate, err
	}

	output, err := renderer.RenderResult(ctx, form, estimate, opts)
	if err != nil {
		return nil, estimate, fmt.Errorf("orchestrator: render result: %w", err)
	}
	return output, estimate, nil
}

func (o *Orchestrator) renderOptions(req Request) (render.RenderOptions, error) {
	opts := req.RenderOptions
	if opts.AssetBase == "" {
		opts.AssetBase = o.assetBase
	}
	if opts.Theme != nil || o.themeSelector == nil {
		return opts, nil
	}

	name := req.ThemeName
	if name == "" {
		name = o.themeName
	}
	variant := req.ThemeVariant
	if variant == "" {
		variant = o.themeVariant
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return opts, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	opts.Theme = themes.RendererConfig(selection)
	return opts, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	if o.formatter == nil {
		o.formatter = format.New()
	}
	if !o.schemaSet {
		s, err := schema.Default()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default schema: %w", err)
		}
		o.schema = s
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	o.decorators = append([]model.Decorator{BaseYearDecorator(o.baseYear)}, o.decorators...)
}

// BaseYearDecorator stamps the age derivation year onto the form so the
// browser runtime computes the same CarAge as the server.
func BaseYearDecorator(year int) model.Decorator {
	return model.DecoratorFunc(func(form *model.FormModel) error {
		if form.Metadata == nil {
			form.Metadata = make(map[string]string)
		}
		form.Metadata[model.MetadataBaseYear] = strconv.Itoa(year)
		return nil
	})
}

func submittedValues(values url.Values) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, list := range values {
		if len(list) > 0 {
			out[key] = list[0]
		}
	}
	return out
}
