package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptySchema is returned when a document declares no columns.
var ErrEmptySchema = errors.New("schema: no columns declared")

type documentFile struct {
	ID       string           `json:"id" yaml:"id"`
	Title    string           `json:"title" yaml:"title"`
	Subtitle string           `json:"subtitle" yaml:"subtitle"`
	Columns  []string         `json:"columns" yaml:"columns"`
	Fields   map[string]Field `json:"fields" yaml:"fields"`
}

// Load parses a JSON or YAML schema document.
func Load(src Source, data []byte) (Schema, error) {
	location := "<inline>"
	if src != nil {
		location = src.Location()
	}

	doc, err := parseDocument(data, location)
	if err != nil {
		return Schema{}, err
	}

	s, err := New(doc.ID, doc.Columns, doc.Fields)
	if err != nil {
		return Schema{}, fmt.Errorf("%w (file %s)", err, location)
	}
	s.Title = strings.TrimSpace(doc.Title)
	s.Subtitle = strings.TrimSpace(doc.Subtitle)
	s.Source = src
	return s, nil
}

// LoadFile reads a schema document from disk.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Load(SourceFromFile(path), data)
}

// LoadFS reads the named schema document from fsys.
func LoadFS(fsys fs.FS, name string) (Schema, error) {
	if fsys == nil {
		return Schema{}, errors.New("schema: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return Load(SourceFromFS(name), data)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

// New validates a column list and descriptor table and returns the resulting
// Schema. Columns without a descriptor become text inputs labelled from their
// name; descriptors that do not name a column are rejected.
func New(id string, columns []string, fields map[string]Field) (Schema, error) {
	if len(columns) == 0 {
		return Schema{}, ErrEmptySchema
	}

	s := Schema{
		ID:      strings.TrimSpace(id),
		columns: make([]string, 0, len(columns)),
		fields:  make(map[string]Field, len(columns)),
	}

	seen := make(map[string]struct{}, len(columns))
	for idx, raw := range columns {
		name := strings.TrimSpace(raw)
		if name == "" {
			return Schema{}, fmt.Errorf("schema: column %d is empty", idx)
		}
		if _, dup := seen[name]; dup {
			return Schema{}, fmt.Errorf("schema: duplicate column %q", name)
		}
		seen[name] = struct{}{}
		s.columns = append(s.columns, name)
	}

	for name := range fields {
		if _, ok := seen[strings.TrimSpace(name)]; !ok {
			return Schema{}, fmt.Errorf("schema: field %q is not a declared column", name)
		}
	}

	for _, name := range s.columns {
		field, ok := fields[name]
		if !ok {
			field = Field{Kind: KindText}
		}
		normalised, err := normaliseField(name, field)
		if err != nil {
			return Schema{}, err
		}
		s.fields[name] = normalised
	}

	for _, name := range s.columns {
		if err := validateDerivation(s, s.fields[name]); err != nil {
			return Schema{}, err
		}
	}

	return s, nil
}

// MustNew panics when New fails. Useful for package-level tables.
func MustNew(id string, columns []string, fields map[string]Field) Schema {
	s, err := New(id, columns, fields)
	if err != nil {
		panic(err)
	}
	return s
}

func normaliseField(name string, field Field) (Field, error) {
	field.Name = name
	field.Label = strings.TrimSpace(field.Label)
	if field.Label == "" {
		field.Label = DefaultLabel(name)
	}

	kind := Kind(strings.ToLower(strings.TrimSpace(string(field.Kind))))
	switch kind {
	case "":
		kind = KindText
	case KindSelect, KindText, KindNumber:
	default:
		return Field{}, fmt.Errorf("schema: field %q has unsupported type %q", name, field.Kind)
	}
	field.Kind = kind

	valueType := ValueType(strings.ToLower(strings.TrimSpace(string(field.ValueType))))
	switch valueType {
	case "":
		valueType = ValueTypeString
		if kind == KindNumber {
			valueType = ValueTypeNumber
		}
	case ValueTypeNumber, ValueTypeString:
	default:
		return Field{}, fmt.Errorf("schema: field %q has unsupported valueType %q", name, field.ValueType)
	}
	if kind == KindNumber && valueType != ValueTypeNumber {
		return Field{}, fmt.Errorf("schema: number field %q cannot use valueType %q", name, valueType)
	}
	field.ValueType = valueType

	if kind == KindSelect && len(field.Options) == 0 {
		return Field{}, fmt.Errorf("schema: select field %q declares no options", name)
	}
	if kind != KindSelect && len(field.Options) > 0 {
		return Field{}, fmt.Errorf("schema: field %q declares options but is not a select", name)
	}
	options := make([]Option, 0, len(field.Options))
	for _, opt := range field.Options {
		opt.Value = strings.TrimSpace(opt.Value)
		opt.Label = strings.TrimSpace(opt.Label)
		if opt.Value == "" {
			return Field{}, fmt.Errorf("schema: select field %q has an empty option", name)
		}
		options = append(options, opt)
	}
	if len(options) > 0 {
		field.Options = options
	} else {
		field.Options = nil
	}

	if field.Min != nil && field.Max != nil && *field.Min > *field.Max {
		return Field{}, fmt.Errorf("schema: field %q has min %v greater than max %v", name, *field.Min, *field.Max)
	}

	field.Step = strings.TrimSpace(field.Step)
	field.Placeholder = strings.TrimSpace(field.Placeholder)
	field.Help = sanitizeHelpMarkup(field.Help)
	return field, nil
}

func validateDerivation(s Schema, field Field) error {
	if field.Derive == nil {
		return nil
	}
	if field.Derive.Kind != DeriveAge {
		return fmt.Errorf("schema: field %q has unsupported derivation %q", field.Name, field.Derive.Kind)
	}
	source, ok := s.fields[field.Derive.From]
	if !ok {
		return fmt.Errorf("schema: field %q derives from unknown column %q", field.Name, field.Derive.From)
	}
	if source.Name == field.Name {
		return fmt.Errorf("schema: field %q cannot derive from itself", field.Name)
	}
	if !source.Numeric() || !field.Numeric() {
		return fmt.Errorf("schema: age derivation %q <- %q requires numeric fields", field.Name, source.Name)
	}
	return nil
}
