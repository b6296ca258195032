package carvalue

import (
	"io/fs"

	"github.com/goliatone/go-carvalue/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can copy and customise them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
