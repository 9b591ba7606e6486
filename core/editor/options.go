package editor

import (
	"github.com/asaidimu/go-folio/core/render"
	"go.uber.org/zap"
)

// DefaultMaxIDAttempts bounds id generation when no option overrides it.
const DefaultMaxIDAttempts = 16

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger used by the editor.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithIDGenerator replaces the generator for new document ids.
func WithIDGenerator(gen func() string) Option {
	return func(e *Editor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithMaxIDAttempts bounds how many generated ids a save tries before
// failing with ErrIDSpaceExhausted. Values below one are treated as one.
func WithMaxIDAttempts(n int) Option {
	return func(e *Editor) {
		e.maxIDAttempts = max(n, 1)
	}
}

// WithCollectionCreated registers the callback fired after a save creates a
// new anchor collection.
func WithCollectionCreated(fn func(CollectionCreated)) Option {
	return func(e *Editor) {
		e.onCollectionCreated = fn
	}
}

// WithPreview attaches a renderer and the surface its payloads are sent to.
// It may be given several times; every target is rendered on each update.
func WithPreview(renderer render.Renderer, surface render.Surface) Option {
	return func(e *Editor) {
		if renderer != nil && surface != nil {
			e.previews = append(e.previews, previewTarget{renderer: renderer, surface: surface})
		}
	}
}
