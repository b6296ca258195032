// Package estimator loads the pre-trained price model and evaluates it for a
// single record. Artifacts are JSON or YAML documents describing a linear
// pipeline: per-column standardisation for numeric features, level weights for
// categorical features, an intercept, and an optional log target transform.
// Loader keeps one process-wide model, loads it lazily, retries while it is
// missing, and only replaces it on an explicit Reload.
package estimator
