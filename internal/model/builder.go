package model

import (
	"strings"

	"github.com/goliatone/go-carvalue/pkg/schema"
)

// Metadata keys the builder writes onto fields and forms. The browser runtime
// reads the derive keys to recompute CarAge while the user types.
const (
	MetadataDerive     = "derive"
	MetadataDeriveFrom = "derive-from"
	MetadataValueType  = "value-type"
	MetadataSource     = "source"
	MetadataBaseYear   = "base-year"
)

// Builder converts a schema into a form model.
type Builder struct {
	opts Options
}

// New creates a Builder with the supplied options.
func New(options Options) *Builder {
	opts := defaultOptions()
	if strings.TrimSpace(options.Endpoint) != "" {
		opts.Endpoint = strings.TrimSpace(options.Endpoint)
	}
	if strings.TrimSpace(options.Method) != "" {
		opts.Method = strings.ToUpper(strings.TrimSpace(options.Method))
	}
	opts.Labeler = options.Labeler
	return &Builder{opts: opts}
}

// Build walks the schema columns in order and emits one field per column.
func (b *Builder) Build(s schema.Schema) (FormModel, error) {
	if err := validateSchema(s); err != nil {
		return FormModel{}, err
	}

	form := FormModel{
		ID:       s.ID,
		Title:    s.Title,
		Subtitle: s.Subtitle,
		Endpoint: b.opts.Endpoint,
		Method:   b.opts.Method,
		Fields:   make([]Field, 0, s.Len()),
	}
	if s.Source != nil {
		form.Metadata = map[string]string{MetadataSource: s.Source.Location()}
	}

	for _, descriptor := range s.Fields() {
		form.Fields = append(form.Fields, b.field(descriptor))
	}
	return form, nil
}

func (b *Builder) field(descriptor schema.Field) Field {
	field := Field{
		Name:        descriptor.Name,
		Type:        FieldType(descriptor.Kind),
		Label:       descriptor.Label,
		Placeholder: descriptor.Placeholder,
		Description: descriptor.Help,
		Numeric:     descriptor.Numeric(),
		Readonly:    descriptor.Readonly,
		Step:        descriptor.Step,
		Validations: boundRules(descriptor),
	}
	if b.opts.Labeler != nil {
		if label := b.opts.Labeler(descriptor.Name); label != "" {
			field.Label = label
		}
	}

	for _, opt := range descriptor.Options {
		field.Options = append(field.Options, Option{
			Value: opt.Value,
			Label: opt.DisplayLabel(),
		})
	}

	if descriptor.Kind == schema.KindSelect && descriptor.ValueType == schema.ValueTypeNumber {
		field.setMetadata(MetadataValueType, string(schema.ValueTypeNumber))
	}
	if descriptor.Derive != nil {
		field.setMetadata(MetadataDerive, descriptor.Derive.Kind)
		field.setMetadata(MetadataDeriveFrom, descriptor.Derive.From)
	}
	return field
}

func (f *Field) setMetadata(key, value string) {
	if f.Metadata == nil {
		f.Metadata = make(map[string]string)
	}
	f.Metadata[key] = value
}
