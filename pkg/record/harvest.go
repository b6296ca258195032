package record

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-carvalue/pkg/schema"
)

// DefaultBaseYear anchors age derivation. The training data treats 2025 models
// as age zero.
const DefaultBaseYear = 2025

// ErrNotFinite is wrapped by CoercionError when a value parses to NaN or Inf.
var ErrNotFinite = errors.New("record: value is not a finite number")

// CoercionError reports a submitted value that could not be converted to the
// type its field declares.
type CoercionError struct {
	Field string
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("could not convert %q in field %s to a number", e.Value, e.Field)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Option configures Harvest.
type Option func(*harvestConfig)

type harvestConfig struct {
	baseYear int
	derive   bool
}

// WithDerivedFields fills blank derived fields (CarAge) from their source
// field instead of leaving them at 0.
func WithDerivedFields() Option {
	return func(cfg *harvestConfig) {
		cfg.derive = true
	}
}

// WithBaseYear overrides the year used for age derivation.
func WithBaseYear(year int) Option {
	return func(cfg *harvestConfig) {
		if year > 0 {
			cfg.baseYear = year
		}
	}
}

// Harvest builds a Record from a form submission. It walks the schema columns
// in declared order, so the result never depends on the order fields arrived
// in. Numeric fields that are absent or blank become 0; non-numeric input in a
// numeric field yields a *CoercionError. Keys that are not schema columns are
// ignored. Blank derived fields stay 0 unless WithDerivedFields is passed.
func Harvest(s schema.Schema, form url.Values, options ...Option) (Record, error) {
	cfg := harvestConfig{baseYear: DefaultBaseYear}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	rec := Record{
		columns: make([]string, 0, s.Len()),
		values:  make(map[string]Value, s.Len()),
	}
	blank := make(map[string]bool)

	for _, field := range s.Fields() {
		raw := strings.TrimSpace(form.Get(field.Name))
		if raw == "" {
			blank[field.Name] = true
		}

		if !field.Numeric() {
			rec.set(field.Name, TextValue(raw))
			continue
		}

		if raw == "" {
			rec.set(field.Name, NumberValue(0))
			continue
		}
		n, err := parseNumber(raw)
		if err != nil {
			return Record{}, &CoercionError{Field: field.Name, Value: raw, Err: err}
		}
		rec.set(field.Name, NumberValue(n))
	}

	if !cfg.derive {
		return rec, nil
	}
	for _, field := range s.Fields() {
		if field.Derive == nil || !blank[field.Name] || blank[field.Derive.From] {
			continue
		}
		source := rec.values[field.Derive.From]
		switch field.Derive.Kind {
		case schema.DeriveAge:
			rec.values[field.Name] = NumberValue(ageFrom(source.Number, cfg.baseYear))
		}
	}

	return rec, nil
}

func parseNumber(raw string) (float64, error) {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, ErrNotFinite
	}
	return n, nil
}

func ageFrom(year float64, baseYear int) float64 {
	age := float64(baseYear) - math.Trunc(year)
	if age < 0 {
		return 0
	}
	return age
}
