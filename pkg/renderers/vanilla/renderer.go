package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
	rendertemplate "github.com/goliatone/go-carvalue/pkg/render/template"
	gotemplate "github.com/goliatone/go-carvalue/pkg/render/template/gotemplate"
)

// Option configures the vanilla renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       *string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must contain templates/form.tmpl and templates/result.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithInlineStylesheet replaces the bundled CSS inlined into each page. An
// empty string disables inline styles.
func WithInlineStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = &css
	}
}

// Renderer produces the HTML form page and the result page.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	stylesheet := defaultStylesheet()
	if cfg.stylesheet != nil {
		stylesheet = *cfg.stylesheet
	}

	return &Renderer{templates: renderer, stylesheet: stylesheet}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render emits the input form, one control per field in model order.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	return r.execute(FormTemplate, buildPage(form, options, r.stylesheet))
}

// RenderResult emits the result page: the formatted price and the submitted
// details, or the error message.
func (r *Renderer) RenderResult(_ context.Context, form model.FormModel, estimate model.Estimate, options render.RenderOptions) ([]byte, error) {
	page := buildPage(form, options, r.stylesheet)
	page.Estimate = &estimate
	return r.execute(ResultTemplate, page)
}

func (r *Renderer) execute(name string, page pageView) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	result, err := r.templates.RenderTemplate(name, page)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render %s: %w", name, err)
	}
	return []byte(result), nil
}
