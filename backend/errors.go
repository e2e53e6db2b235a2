package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// RequestError is returned whenever a request to Planning Center comes
// back with a non-2xx status. It keeps the status code and body around
// so callers can tell a deleted resource (404) apart from other
// failures.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Op, e.URL, e.StatusCode)
}

func newRequestError(op, rawurl string, res *resty.Response) *RequestError {
	return &RequestError{
		Op:         op,
		URL:        rawurl,
		StatusCode: res.StatusCode(),
		Body:       res.Body(),
	}
}

// IsNotFound reports whether err is a RequestError with a 404 status.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusNotFound
}
