package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-carvalue/pkg/model"
)

// ApplyValues returns a copy of form with options.Values and options.Errors
// applied to the matching fields. The input form is not modified.
func ApplyValues(form model.FormModel, options RenderOptions) model.FormModel {
	if len(options.Values) == 0 && len(options.Errors) == 0 {
		return form
	}

	out := form
	out.Fields = make([]model.Field, len(form.Fields))
	for idx, field := range form.Fields {
		if raw, ok := options.Values[field.Name]; ok {
			field.Value = stringValue(raw)
			if len(field.Options) > 0 {
				field.Options = selectOption(field.Options, field.Value)
			}
		}
		if messages := normalizeMessages(options.Errors[field.Name]); len(messages) > 0 {
			field.Errors = messages
		}
		out.Fields[idx] = field
	}
	return out
}

func selectOption(options []model.Option, value string) []model.Option {
	out := make([]model.Option, len(options))
	for idx, opt := range options {
		opt.Selected = opt.Value == value
		out[idx] = opt
	}
	return out
}

func stringValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []string:
		if len(v) == 0 {
			return ""
		}
		return strings.TrimSpace(v[0])
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
