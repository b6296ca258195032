package estimator

import (
	"context"
	"fmt"
	"math"

	"github.com/goliatone/go-carvalue/pkg/record"
)

// TargetTransform names the inverse transform applied to the raw model output.
type TargetTransform string

const (
	TransformNone TargetTransform = ""
	TransformLog  TargetTransform = "log"
)

// NumericFeature standardises a numeric column and weighs it.
type NumericFeature struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Scale  float64 `json:"scale" yaml:"scale"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Linear is a scaled, one-hot encoded linear regression: numeric columns are
// standardised, categorical columns contribute the weight of their level
// (unknown levels contribute nothing), and the sum passes through an optional
// inverse target transform and floor.
type Linear struct {
	Columns     []string
	Intercept   float64
	Numeric     map[string]NumericFeature
	Categorical map[string]map[string]float64
	Transform   TargetTransform
	Floor       *float64
}

var _ Model = (*Linear)(nil)

// Predict evaluates the pipeline for rec.
func (m *Linear) Predict(ctx context.Context, rec record.Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := m.checkColumns(rec.Columns()); err != nil {
		return 0, err
	}

	total := m.Intercept
	for _, name := range m.Columns {
		value, _ := rec.Get(name)

		if feature, ok := m.Numeric[name]; ok {
			if !value.Numeric {
				return 0, fmt.Errorf("estimator: column %s expects a number, got %q", name, value.Text)
			}
			scale := feature.Scale
			if scale == 0 {
				scale = 1
			}
			total += feature.Weight * (value.Number - feature.Mean) / scale
			continue
		}

		if levels, ok := m.Categorical[name]; ok {
			total += levels[value.String()]
		}
	}

	if m.Transform == TransformLog {
		total = math.Exp(total)
	}
	if m.Floor != nil && total < *m.Floor {
		total = *m.Floor
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, ErrNonFinite
	}
	return total, nil
}

func (m *Linear) checkColumns(got []string) error {
	if len(got) != len(m.Columns) {
		return fmt.Errorf("%w: want %d columns, got %d", ErrColumnMismatch, len(m.Columns), len(got))
	}
	for idx, name := range m.Columns {
		if got[idx] != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrColumnMismatch, idx, got[idx], name)
		}
	}
	return nil
}
