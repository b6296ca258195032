package estimator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-carvalue/pkg/record"
)

var (
	// ErrModelNotFound signals that no artifact exists at the configured path.
	ErrModelNotFound = errors.New("estimator: model artifact not found")
	// ErrModelInvalid signals an artifact that exists but cannot be decoded or
	// fails validation.
	ErrModelInvalid = errors.New("estimator: model artifact is invalid")
	// ErrColumnMismatch is returned when a record's columns differ from the
	// columns the model was trained on.
	ErrColumnMismatch = errors.New("estimator: record columns do not match model columns")
	// ErrNonFinite is returned when a prediction evaluates to NaN or Inf.
	ErrNonFinite = errors.New("estimator: prediction is not a finite number")
)

// Model is a pre-trained price function. Predict receives exactly one row and
// returns a single estimate.
type Model interface {
	Predict(ctx context.Context, rec record.Record) (float64, error)
}

// ModelFunc adapts a function into a Model.
type ModelFunc func(ctx context.Context, rec record.Record) (float64, error)

// Predict calls the underlying function.
func (fn ModelFunc) Predict(ctx context.Context, rec record.Record) (float64, error) {
	return fn(ctx, rec)
}

// LoadError records which artifact failed to load. It wraps ErrModelNotFound
// or ErrModelInvalid.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Path)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
