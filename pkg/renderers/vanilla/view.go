package vanilla

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-carvalue/pkg/model"
	"github.com/goliatone/go-carvalue/pkg/render"
	"github.com/goliatone/go-carvalue/pkg/themes"
)

// fieldView flattens a model.Field into the values the templates print. Keys
// are plain identifiers because pongo2 cannot address dashed map keys.
type fieldView struct {
	Name        string         `json:"name"`
	Control     string         `json:"control"`
	Label       string         `json:"label"`
	Placeholder string         `json:"placeholder,omitempty"`
	Help        string         `json:"help,omitempty"`
	Value       string         `json:"value,omitempty"`
	Readonly    bool           `json:"readonly,omitempty"`
	Step        string         `json:"step,omitempty"`
	Min         string         `json:"min,omitempty"`
	Max         string         `json:"max,omitempty"`
	Numeric     bool           `json:"numeric"`
	Derive      string         `json:"derive,omitempty"`
	DeriveFrom  string         `json:"deriveFrom,omitempty"`
	Options     []model.Option `json:"options,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
}

type themeView struct {
	Name    string `json:"name,omitempty"`
	Variant string `json:"variant,omitempty"`
	Style   string `json:"style,omitempty"`
}

type assetsView struct {
	InlineCSS  string `json:"inlineCSS,omitempty"`
	Stylesheet string `json:"stylesheet,omitempty"`
	Script     string `json:"script,omitempty"`
}

type pageView struct {
	Form       formView        `json:"form"`
	Theme      themeView       `json:"theme"`
	Assets     assetsView      `json:"assets"`
	FormErrors []string        `json:"formErrors,omitempty"`
	Estimate   *model.Estimate `json:"estimate,omitempty"`
}

type formView struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle,omitempty"`
	Endpoint string      `json:"endpoint"`
	Method   string      `json:"method"`
	BaseYear string      `json:"baseYear,omitempty"`
	Fields   []fieldView `json:"fields"`
}

const defaultTitle = "Car Price Estimator"

func buildPage(form model.FormModel, options render.RenderOptions, inlineCSS string) pageView {
	form = render.ApplyValues(form, options)

	view := formView{
		ID:       form.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Endpoint: form.Endpoint,
		Method:   form.Method,
		BaseYear: form.Metadata[model.MetadataBaseYear],
		Fields:   make([]fieldView, 0, len(form.Fields)),
	}
	if view.Title == "" {
		view.Title = defaultTitle
	}
	for _, field := range form.Fields {
		view.Fields = append(view.Fields, buildField(field))
	}

	return pageView{
		Form:       view,
		Theme:      buildTheme(options.Theme),
		Assets:     buildAssets(options, inlineCSS),
		FormErrors: render.MergeFormErrors(options.FormErrors),
	}
}

func buildField(field model.Field) fieldView {
	view := fieldView{
		Name:        field.Name,
		Control:     controlFor(field),
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Help:        field.Description,
		Value:       field.Value,
		Readonly:    field.Readonly,
		Step:        field.Step,
		Numeric:     field.Numeric,
		Options:     field.Options,
		Errors:      field.Errors,
	}
	view.Min, _ = field.Rule(model.ValidationRuleMin)
	view.Max, _ = field.Rule(model.ValidationRuleMax)
	if field.Metadata != nil {
		view.Derive = field.Metadata[model.MetadataDerive]
		view.DeriveFrom = field.Metadata[model.MetadataDeriveFrom]
	}
	return view
}

func controlFor(field model.Field) string {
	switch field.Type {
	case model.FieldTypeSelect:
		return "select"
	case model.FieldTypeNumber:
		return "number"
	default:
		return "text"
	}
}

func buildTheme(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		Style:   themes.CSSVarsStyle(cfg.CSSVars),
	}
}

func buildAssets(options render.RenderOptions, inlineCSS string) assetsView {
	assets := assetsView{InlineCSS: inlineCSS}
	if cfg := options.Theme; cfg != nil && cfg.AssetURL != nil {
		assets.Stylesheet = cfg.AssetURL(themes.StylesheetKey)
		assets.Script = cfg.AssetURL(themes.RuntimeKey)
	}
	base := strings.TrimSuffix(strings.TrimSpace(options.AssetBase), "/")
	if base == "" {
		return assets
	}
	if assets.Script == "" {
		assets.Script = base + "/" + RuntimeScriptName
	}
	return assets
}
