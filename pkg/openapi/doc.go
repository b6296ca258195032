// Package openapi describes the prediction endpoint as an OpenAPI 3 document
// generated from the field schema, so API clients see the same columns,
// options and bounds as the HTML form.
package openapi
