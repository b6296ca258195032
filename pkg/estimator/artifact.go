package estimator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KindLinear identifies the linear pipeline artifact format.
const KindLinear = "linear"

type artifactFile struct {
	Kind            string                        `json:"kind" yaml:"kind"`
	Version         int                           `json:"version" yaml:"version"`
	Target          string                        `json:"target" yaml:"target"`
	Columns         []string                      `json:"columns" yaml:"columns"`
	Intercept       float64                       `json:"intercept" yaml:"intercept"`
	Numeric         map[string]NumericFeature     `json:"numeric" yaml:"numeric"`
	Categorical     map[string]map[string]float64 `json:"categorical" yaml:"categorical"`
	TargetTransform string                        `json:"target_transform" yaml:"target_transform"`
	Floor           *float64                      `json:"floor" yaml:"floor"`
}

// DecodeOption configures Decode and LoadFile.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	columns []string
}

// WithExpectedColumns rejects artifacts whose column list differs from
// columns, in content or order.
func WithExpectedColumns(columns []string) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.columns = append([]string(nil), columns...)
	}
}

// Decode parses a JSON or YAML artifact. Every error wraps ErrModelInvalid.
func Decode(data []byte, options ...DecodeOption) (Model, error) {
	cfg := decodeConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: artifact is empty", ErrModelInvalid)
	}

	var file artifactFile
	if err := json.Unmarshal(data, &file); err != nil {
		file = artifactFile{}
		if yerr := yaml.Unmarshal(data, &file); yerr != nil {
			return nil, fmt.Errorf("%w: parse: %v", ErrModelInvalid, yerr)
		}
	}

	model, err := file.build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInvalid, err)
	}

	if cfg.columns != nil {
		if err := model.checkColumns(cfg.columns); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelInvalid, err)
		}
	}
	return model, nil
}

// LoadFile reads and decodes the artifact at path. Failures are returned as
// *LoadError wrapping ErrModelNotFound or ErrModelInvalid.
func LoadFile(path string, options ...DecodeOption) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Err: ErrModelNotFound}
		}
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: read: %v", ErrModelInvalid, err)}
	}

	model, err := Decode(data, options...)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return model, nil
}

func (f artifactFile) build() (*Linear, error) {
	kind := strings.ToLower(strings.TrimSpace(f.Kind))
	if kind != KindLinear {
		return nil, fmt.Errorf("unsupported artifact kind %q", f.Kind)
	}
	if len(f.Columns) == 0 {
		return nil, errors.New("artifact declares no columns")
	}

	seen := make(map[string]struct{}, len(f.Columns))
	for _, name := range f.Columns {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("artifact declares an empty column")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = struct{}{}
	}

	for name := range f.Numeric {
		if _, ok := seen[name]; !ok {
			return nil, fmt.Errorf("numeric feature %q is not a declared column", name)
		}
	}
	for name := range f.Categorical {
		if _, ok := seen[name]; !ok {
			return nil, fmt.Errorf("categorical feature %q is not a declared column", name)
		}
		if _, both := f.Numeric[name]; both {
			return nil, fmt.Errorf("column %q cannot be both numeric and categorical", name)
		}
	}

	transform := TargetTransform(strings.ToLower(strings.TrimSpace(f.TargetTransform)))
	switch transform {
	case TransformNone, TransformLog:
	default:
		return nil, fmt.Errorf("unsupported target_transform %q", f.TargetTransform)
	}

	return &Linear{
		Columns:     append([]string(nil), f.Columns...),
		Intercept:   f.Intercept,
		Numeric:     f.Numeric,
		Categorical: f.Categorical,
		Transform:   transform,
		Floor:       f.Floor,
	}, nil
}
