package orchestrator

import (
	"log/slog"

	theme "github.com/goliatone/go-theme"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-carvalue/pkg/format"
	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/schema"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithSchema replaces the embedded vehicle schema.
func WithSchema(s schema.Schema) Option {
	return func(o *Orchestrator) {
		o.schema = s
		o.schemaSet = true
	}
}

// WithModelSource injects where the estimator model comes from. An
// *estimator.Loader is the usual source.
func WithModelSource(source ModelSource) Option {
	return func(o *Orchestrator) {
		o.models = source
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithUIDecorators registers decorators that run against the generated form
// model before rendering.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithRecorder stores every estimate after it is produced.
func WithRecorder(recorder Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = recorder
	}
}

// WithLogger routes pipeline diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer replaces the tracer used for estimate spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithBaseYear sets the year CarAge is derived against.
func WithBaseYear(year int) Option {
	return func(o *Orchestrator) {
		if year > 0 {
			o.baseYear = year
		}
	}
}

// WithDerivedFields controls whether blank derived fields (CarAge) are
// calculated on the server. Enabled by default; when disabled they are sent
// to the model as 0, leaving the calculation to the browser runtime.
func WithDerivedFields(enabled bool) Option {
	return func(o *Orchestrator) {
		o.deriveFields = enabled
	}
}

// WithFormatter replaces the currency formatter.
func WithFormatter(formatter *format.Formatter) Option {
	return func(o *Orchestrator) {
		if formatter != nil {
			o.formatter = formatter
		}
	}
}

// WithThemeSelector resolves theme manifests for every render.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithTheme sets the theme name and variant used when a request does not ask
// for one.
func WithTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithAssetBase sets the URL prefix renderers use for runtime assets.
func WithAssetBase(base string) Option {
	return func(o *Orchestrator) {
		o.assetBase = base
	}
}
