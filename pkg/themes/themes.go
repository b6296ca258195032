// Package themes resolves go-theme manifests into the renderer configuration
// the HTML renderer turns into CSS custom properties.
package themes

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// StylesheetKey names an optional extra stylesheet a theme may ship on top of
// the renderer's inline styles. RuntimeKey names the browser runtime script.
const (
	DefaultTheme   = "carvalue"
	VariantLight   = "light"
	VariantDark    = "dark"
	StylesheetKey  = "vanilla.stylesheet"
	RuntimeKey     = "vanilla.runtime"
	defaultVersion = "1.0.0"
)

var (
	ErrThemeNotFound   = errors.New("themes: theme not found")
	ErrVariantNotFound = errors.New("themes: variant not found")
)

// DefaultManifest describes the built-in palette. The light variant uses the
// base tokens; dark overrides the surface and text colours.
func DefaultManifest(assetPrefix string) *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: defaultVersion,
		Tokens: map[string]string{
			"color-primary":    "#2563eb",
			"color-primary-fg": "#ffffff",
			"color-surface":    "#ffffff",
			"color-background": "#f3f4f6",
			"color-text":       "#111827",
			"color-muted":      "#6b7280",
			"color-border":     "#d1d5db",
			"color-success":    "#047857",
			"color-error":      "#b91c1c",
			"radius":           "0.5rem",
			"font-family":      "system-ui, -apple-system, \"Segoe UI\", sans-serif",
		},
		Assets: theme.Assets{
			Prefix: assetPrefix,
			Files: map[string]string{
				RuntimeKey: "carvalue.js",
			},
		},
		Variants: map[string]theme.Variant{
			VariantLight: {},
			VariantDark: {
				Tokens: map[string]string{
					"color-surface":    "#1f2937",
					"color-background": "#111827",
					"color-text":       "#f9fafb",
					"color-muted":      "#9ca3af",
					"color-border":     "#374151",
				},
			},
		},
	}
}

// Selector picks a manifest and variant by name. It satisfies
// theme.ThemeSelector so callers can swap in any go-theme backed selector.
type Selector struct {
	mu             sync.RWMutex
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests and uses the first one as the default.
func NewSelector(defaultVariant string, manifests ...*theme.Manifest) *Selector {
	s := &Selector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if manifest == nil || manifest.Name == "" {
			continue
		}
		if s.defaultTheme == "" {
			s.defaultTheme = manifest.Name
		}
		s.manifests[manifest.Name] = manifest
	}
	return s
}

// Select resolves name and variant, falling back to the defaults when either
// is empty.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = s.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q in theme %q", ErrVariantNotFound, variant, name)
		}
	}

	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Variants lists the variant names of the named theme.
func (s *Selector) Variants(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(manifest.Variants))
	for key := range manifest.Variants {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// RendererConfig merges the base manifest with the selected variant and
// derives one CSS custom property per token.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := mergeMaps(manifest.Tokens, nil)
	partials := mergeMaps(manifest.Templates, nil)
	files := mergeMaps(manifest.Assets.Files, nil)
	prefix := manifest.Assets.Prefix

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeMaps(tokens, variant.Tokens)
		partials = mergeMaps(partials, variant.Templates)
		files = mergeMaps(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: assetResolver(prefix, files),
	}
}

// CSSVarsStyle renders vars as a sorted declaration list for a style
// attribute or :root block.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		if strings.HasPrefix(prefix, "/") {
			return path.Join(prefix, file)
		}
		return strings.TrimSuffix(prefix, "/") + "/" + file
	}
}

func mergeMaps(base, overlay map[string]string) map[string]string {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(overlay))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range overlay {
		out[key] = value
	}
	return out
}
