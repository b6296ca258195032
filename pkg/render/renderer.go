package render

import (
	"context"

	"github.com/goliatone/go-carvalue/pkg/model"
)

// Renderer converts a FormModel, or the Estimate produced from its submission,
// into a byte representation (HTML, JSON, plain text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
	RenderResult(ctx context.Context, form model.FormModel, estimate model.Estimate, options RenderOptions) ([]byte, error)
}
