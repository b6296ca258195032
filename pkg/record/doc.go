// Package record turns a form submission into the ordered row the price model
// consumes.
package record
