package modeladapter

// TransportError reports a failure to build, send, or read an HTTP request.
// It wraps the underlying error unchanged so callers can still match
// *url.Error, net.Error, or context errors with errors.As and errors.Is.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying error is a timeout.
func (e *TransportError) Timeout() bool {
	t, ok := e.Err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}
