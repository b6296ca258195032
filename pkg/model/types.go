package model

import internalmodel "github.com/goliatone/go-carvalue/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeSelect = internalmodel.FieldTypeSelect
	FieldTypeText   = internalmodel.FieldTypeText
	FieldTypeNumber = internalmodel.FieldTypeNumber
)

const (
	ValidationRuleMin = internalmodel.ValidationRuleMin
	ValidationRuleMax = internalmodel.ValidationRuleMax

	MetadataDerive     = internalmodel.MetadataDerive
	MetadataDeriveFrom = internalmodel.MetadataDeriveFrom
	MetadataValueType  = internalmodel.MetadataValueType
	MetadataSource     = internalmodel.MetadataSource
	MetadataBaseYear   = internalmodel.MetadataBaseYear
)

type ValidationRule = internalmodel.ValidationRule
type Option = internalmodel.Option
type Field = internalmodel.Field
type FormModel = internalmodel.FormModel
