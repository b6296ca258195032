// Package orchestrator wires the schema → form model → renderer pipeline and
// the submission → record → model → estimate pipeline behind one value, so the
// HTTP server and the CLI share the same behaviour.
package orchestrator
