package model

// Options configures the behaviour of the Builder. Options are constructed by
// the public adapter in pkg/model and passed into New.
type Options struct {
	Endpoint string
	Method   string
	Labeler  func(string) string
}

const (
	DefaultEndpoint = "/predict"
	DefaultMethod   = "POST"
)

func defaultOptions() Options {
	return Options{
		Endpoint: DefaultEndpoint,
		Method:   DefaultMethod,
	}
}
