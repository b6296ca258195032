package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the input control used to collect a field.
type Kind string

const (
	KindSelect Kind = "select"
	KindText   Kind = "text"
	KindNumber Kind = "number"
)

// ValueType controls how a submitted value is coerced before it reaches the
// model. Number inputs are always numeric; selects and text inputs default to
// strings unless they declare valueType: number.
type ValueType string

const (
	ValueTypeString ValueType = "string"
	ValueTypeNumber ValueType = "number"
)

// DeriveAge computes a vehicle age from a manufacture year field.
const DeriveAge = "age"

// Derivation fills a field server-side when the submission leaves it empty.
type Derivation struct {
	Kind string `json:"kind" yaml:"kind"`
	From string `json:"from" yaml:"from"`
}

// Option is one entry of a select control. Schema files may list options as
// bare scalars (`Toyota`, `4`) or as {value, label} mappings.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// DisplayLabel returns the label, falling back to the value.
func (o Option) DisplayLabel() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// UnmarshalJSON accepts strings, numbers, booleans, or an object.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case map[string]any:
		type plain Option
		var out plain
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		*o = Option(out)
	case string:
		*o = Option{Value: v}
	case float64:
		*o = Option{Value: strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		*o = Option{Value: strconv.FormatBool(v)}
	default:
		return fmt.Errorf("schema: unsupported option value %s", string(data))
	}
	return nil
}

// UnmarshalYAML accepts a scalar or a mapping node.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*o = Option{Value: node.Value}
		return nil
	case yaml.MappingNode:
		type plain Option
		var out plain
		if err := node.Decode(&out); err != nil {
			return err
		}
		*o = Option(out)
		return nil
	default:
		return fmt.Errorf("schema: line %d: option must be a scalar or mapping", node.Line)
	}
}

// Field describes a single input: how it is labelled, which control renders it,
// and the constraints the browser should enforce.
type Field struct {
	Name        string      `json:"-" yaml:"-"`
	Label       string      `json:"label" yaml:"label"`
	Kind        Kind        `json:"type" yaml:"type"`
	ValueType   ValueType   `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	Options     []Option    `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string      `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string      `json:"help,omitempty" yaml:"help,omitempty"`
	Min         *float64    `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64    `json:"max,omitempty" yaml:"max,omitempty"`
	Step        string      `json:"step,omitempty" yaml:"step,omitempty"`
	Readonly    bool        `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Derive      *Derivation `json:"derive,omitempty" yaml:"derive,omitempty"`
}

// Numeric reports whether submitted values must be coerced to float.
func (f Field) Numeric() bool {
	return f.Kind == KindNumber || f.ValueType == ValueTypeNumber
}

// Schema is the static field table. Columns fixes the order in which values
// are harvested and handed to the model; Fields holds one descriptor per
// column. A Schema is immutable once loaded and safe for concurrent readers.
type Schema struct {
	ID       string
	Title    string
	Subtitle string
	Source   Source
	columns  []string
	fields   map[string]Field
}

// Columns returns a copy of the declared column order.
func (s Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of declared columns.
func (s Schema) Len() int {
	return len(s.columns)
}

// Field returns the descriptor for name.
func (s Schema) Field(name string) (Field, bool) {
	field, ok := s.fields[name]
	return field, ok
}

// Fields returns the descriptors in column order.
func (s Schema) Fields() []Field {
	out := make([]Field, 0, len(s.columns))
	for _, name := range s.columns {
		out = append(out, s.fields[name])
	}
	return out
}
