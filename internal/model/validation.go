package model

import (
	"errors"
	"strconv"

	"github.com/goliatone/go-carvalue/pkg/schema"
)

var errSchemaEmpty = errors.New("model builder: schema declares no columns")

func validateSchema(s schema.Schema) error {
	if s.Len() == 0 {
		return errSchemaEmpty
	}
	return nil
}

func boundRules(field schema.Field) []ValidationRule {
	var rules []ValidationRule
	if field.Min != nil {
		rules = append(rules, numericRule(ValidationRuleMin, *field.Min))
	}
	if field.Max != nil {
		rules = append(rules, numericRule(ValidationRuleMax, *field.Max))
	}
	return rules
}

func numericRule(kind string, value float64) ValidationRule {
	return ValidationRule{
		Kind:   kind,
		Params: map[string]string{"value": strconv.FormatFloat(value, 'f', -1, 64)},
	}
}
