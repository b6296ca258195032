package template

import (
	"io"
)

// TemplateRenderer is the seam HTML renderers depend on. The pongo2-backed
// Engine in the gotemplate subpackage is the default implementation.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
