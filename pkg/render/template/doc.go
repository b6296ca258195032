// Package template defines the renderer-agnostic template interface. Template
// data is passed through its JSON form, so templates address struct fields by
// their json tag names.
package template
