package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model pipeline.
type RenderOptions struct {
	// Values pre-populates rendered controls keyed by field name, typically
	// the values of a submission being shown again.
	Values map[string]any
	// Errors surfaces server-side feedback keyed by field name.
	Errors map[string][]string
	// FormErrors are messages not tied to a single field.
	FormErrors []string
	// Theme carries the resolved go-theme configuration. Nil renders without
	// theme CSS variables.
	Theme *theme.RendererConfig
	// AssetBase is the URL prefix the runtime script and stylesheet are served
	// under. Empty disables the asset tags.
	AssetBase string
}
