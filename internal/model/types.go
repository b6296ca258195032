package model

// FieldType is the input control a field renders as.
type FieldType string

const (
	FieldTypeSelect FieldType = "select"
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
)

const (
	ValidationRuleMin = "min"
	ValidationRuleMax = "max"
)

// ValidationRule represents a single constraint the browser enforces. Numeric
// bounds encode their threshold in Params["value"] so the template can emit
// it verbatim as an HTML attribute.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Option is one entry of a select control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// Field models an individual input inside the generated form. Struct fields
// are annotated so renderers and templates can consume the JSON form directly.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Label       string            `json:"label"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Numeric     bool              `json:"numeric"`
	Readonly    bool              `json:"readonly,omitempty"`
	Step        string            `json:"step,omitempty"`
	Value       string            `json:"value,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FormModel is the top-level representation renderers consume. Fields keep the
// schema column order.
type FormModel struct {
	ID       string            `json:"id"`
	Title    string            `json:"title,omitempty"`
	Subtitle string            `json:"subtitle,omitempty"`
	Endpoint string            `json:"endpoint"`
	Method   string            `json:"method"`
	Fields   []Field           `json:"fields"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Field returns the field called name.
func (f FormModel) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Rule returns the parameter value of the first rule of kind.
func (f Field) Rule(kind string) (string, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			value, ok := rule.Params["value"]
			return value, ok
		}
	}
	return "", false
}
