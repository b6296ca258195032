package model

// ErrorKind classifies why an estimate carries no prediction.
type ErrorKind string

const (
	ErrorKindNone ErrorKind = ""
	// ErrorKindModelUnavailable means the model artifact is missing or could
	// not be decoded.
	ErrorKindModelUnavailable ErrorKind = "model_unavailable"
	// ErrorKindInput means a submitted value could not be coerced.
	ErrorKindInput ErrorKind = "invalid_input"
	// ErrorKindPrediction means the model rejected the record.
	ErrorKindPrediction ErrorKind = "prediction_failed"
)

// Detail is one harvested value echoed on the result page.
type Detail struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Estimate is the outcome of one prediction request. Exactly one of Formatted
// and Error is set.
type Estimate struct {
	Prediction float64   `json:"prediction,omitempty"`
	Formatted  string    `json:"formatted,omitempty"`
	Details    []Detail  `json:"details,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  ErrorKind `json:"errorKind,omitempty"`
	Field      string    `json:"field,omitempty"`
}

// OK reports whether the estimate carries a prediction.
func (e Estimate) OK() bool {
	return e.Error == ""
}
