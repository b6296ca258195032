package estimator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// OpenFunc loads a model from path.
type OpenFunc func(path string) (Model, error)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger routes load diagnostics to logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithOpenFunc replaces the artifact reader. Tests use it to count load
// attempts; callers can plug in other artifact formats.
func WithOpenFunc(open OpenFunc) LoaderOption {
	return func(l *Loader) {
		if open != nil {
			l.open = open
		}
	}
}

// WithColumns makes the default reader reject artifacts trained on a
// different column order.
func WithColumns(columns []string) LoaderOption {
	return func(l *Loader) {
		l.columns = append([]string(nil), columns...)
	}
}

// Loader owns the process-wide model reference. The artifact is read on first
// use; while the model is unset every call makes a fresh attempt, and
// concurrent callers share that attempt. Once a model is loaded it is only
// replaced by an explicit Reload.
type Loader struct {
	path    string
	columns []string
	open    OpenFunc
	logger  *slog.Logger

	mu    sync.RWMutex
	model Model
	group singleflight.Group
}

// NewLoader returns a Loader for the artifact at path. Nothing is read until
// Model, Load or Reload is called.
func NewLoader(path string, options ...LoaderOption) *Loader {
	l := &Loader{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	if l.open == nil {
		l.open = func(path string) (Model, error) {
			var opts []DecodeOption
			if l.columns != nil {
				opts = append(opts, WithExpectedColumns(l.columns))
			}
			return LoadFile(path, opts...)
		}
	}
	return l
}

// Path returns the artifact location.
func (l *Loader) Path() string {
	return l.path
}

// Loaded reports whether a model is currently held.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model != nil
}

// Model returns the loaded model, attempting a load when none is held yet.
func (l *Loader) Model(ctx context.Context) (Model, error) {
	l.mu.RLock()
	model := l.model
	l.mu.RUnlock()
	if model != nil {
		return model, nil
	}
	return l.load(ctx, false)
}

// Load is Model without the return value, for eager loading at startup. The
// error is returned so callers can decide whether a missing artifact matters.
func (l *Loader) Load(ctx context.Context) error {
	_, err := l.Model(ctx)
	return err
}

// Reload reads the artifact again. On failure the previous model, if any, is
// kept.
func (l *Loader) Reload(ctx context.Context) (Model, error) {
	return l.load(ctx, true)
}

func (l *Loader) load(ctx context.Context, force bool) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := "load"
	if force {
		key = "reload"
	}

	result, err, _ := l.group.Do(key, func() (any, error) {
		if !force {
			l.mu.RLock()
			current := l.model
			l.mu.RUnlock()
			if current != nil {
				return current, nil
			}
		}

		model, err := l.open(l.path)
		if err == nil && model == nil {
			err = &LoadError{Path: l.path, Err: fmt.Errorf("%w: reader returned no model", ErrModelInvalid)}
		}
		if err != nil {
			l.logger.Warn("model not loaded", "path", l.path, "error", err)
			return nil, err
		}

		l.mu.Lock()
		l.model = model
		l.mu.Unlock()

		l.logger.Info("model loaded", "path", l.path, "reload", force)
		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Model), nil
}
