// Package carvalue turns a declarative vehicle schema into an HTML form and
// feeds submissions, in schema column order, to a pre-trained price model.
//
// Most callers need only NewOrchestrator plus an estimator.Loader:
//
//	loader := estimator.NewLoader("model.json")
//	orch := carvalue.NewOrchestrator(orchestrator.WithModelSource(loader))
//	_, estimate := orch.Estimate(ctx, form)
package carvalue

import (
	"context"
	"net/url"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-carvalue/pkg/estimator"
	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/orchestrator"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/renderers/jsonapi"
	"github.com/goliatone/go-carvalue/pkg/renderers/tui"
	"github.com/goliatone/go-carvalue/pkg/renderers/vanilla"
	"github.com/goliatone/go-carvalue/pkg/themes"
)

// RenderOptions describes per-request overrides renderers use to prefill
// values or surface errors.
type RenderOptions = render.RenderOptions

// Estimate is the outcome of one prediction request.
type Estimate = model.Estimate

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewRegistry returns a registry holding the vanilla HTML, JSON and plain
// text renderers.
func NewRegistry(options ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(jsonapi.New()); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.New()); err != nil {
		return nil, err
	}
	return registry, nil
}

// GenerateHTML renders the input form with the default vanilla renderer.
func GenerateHTML(ctx context.Context, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).RenderForm(ctx, orchestrator.Request{})
}

// EstimateFile loads the artifact at modelPath and runs one estimate for
// values.
func EstimateFile(ctx context.Context, modelPath string, values url.Values, options ...orchestrator.Option) Estimate {
	loader := estimator.NewLoader(modelPath)
	options = append([]orchestrator.Option{orchestrator.WithModelSource(loader)}, options...)
	_, estimate := orchestrator.New(options...).Estimate(ctx, values)
	return estimate
}

// WithThemeSelector passes a go-theme selector through to the orchestrator.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithDefaultTheme registers the built-in palette with assets served under
// assetPrefix, using variant unless a request asks for another.
func WithDefaultTheme(assetPrefix, variant string) orchestrator.Option {
	selector := themes.NewSelector(variant, themes.DefaultManifest(assetPrefix))
	return orchestrator.WithThemeSelector(selector)
}
