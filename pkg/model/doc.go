// Package model defines the typed form model consumed by renderers and the
// Estimate value returned for each prediction. Builders reside in
// internal/model but return the types defined here. Fields follow the schema
// column order, carry min/max bounds as ValidationRule entries with the value
// in Params["value"], and expose derivations (CarAge from Year) through the
// `derive` and `derive-from` metadata keys that the browser runtime reads.
package model
