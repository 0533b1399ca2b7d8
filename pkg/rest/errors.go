package rest

import "fmt"

// HTTPError reports a response with a status code outside 2xx. The caller
// decides whether to retry; this layer never does.
type HTTPError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Status, truncate(e.Body, 256))
}

// ExchangeError is a business-level rejection embedded in a 2xx response
// envelope, identified by the exchange error code.
type ExchangeError struct {
	Code    string
	Message string
}

// Error implements the error interface
func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange error %s: %s", e.Code, e.Message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
