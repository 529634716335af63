package render

import (
	"context"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// Renderer turns a form spec plus the engine's current state into bytes
// (HTML, JSON props, ...). Implementations must be pure functions of their
// inputs so repeated renders of the same snapshot are identical.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, spec model.FormSpec, options RenderOptions) ([]byte, error)
}
