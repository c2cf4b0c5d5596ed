package stats

// Envelope is the typed result wrapper for the query/report surface.
// Code 0 means success; -1 carries a failure message. Errors local to one
// query never crash the caller.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps a successful result.
func OK(data any) Envelope {
	return Envelope{Code: 0, Data: data}
}

// Fail wraps a query failure.
func Fail(err error) Envelope {
	return Envelope{Code: -1, Message: err.Error()}
}

// Wrap folds a (value, error) pair into an Envelope.
func Wrap(data any, err error) Envelope {
	if err != nil {
		return Fail(err)
	}
	return OK(data)
}
