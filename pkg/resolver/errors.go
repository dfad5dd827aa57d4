package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/shpitdev/email-finder-pipeline/pkg/pipeline/redact"
)

// ErrorClass groups resolver failures for metrics and logs.
type ErrorClass string

const (
	ErrorClassNetwork ErrorClass = "network"
	ErrorClassTimeout ErrorClass = "timeout"
	ErrorClassClient  ErrorClass = "client"
	ErrorClassServer  ErrorClass = "server"
	ErrorClassDecode  ErrorClass = "decode"
)

// TransportError wraps a failure to complete one resolver call.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "resolver transport error"
	}
	if e.Op == "" {
		return redact.Secrets(e.Err.Error())
	}
	return e.Op + ": " + redact.Secrets(e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPError is a sanitized summary of a non-2xx resolver response.
//
// Raw bodies are never kept; Snippet is redacted and truncated.
type HTTPError struct {
	StatusCode int
	Status     string
	Snippet    string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "resolver http error"
	}
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	msg := "Request failed with status code " + status
	if strings.TrimSpace(e.Snippet) != "" {
		msg += ": " + strings.TrimSpace(e.Snippet)
	}
	return msg
}

const maxSnippet = 256

func newHTTPError(resp *http.Response, body []byte) error {
	h := &HTTPError{}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}
	h.Snippet = redact.Truncate(body, maxSnippet)
	return h
}

// Classify maps a resolver error onto an ErrorClass.
func Classify(err error) ErrorClass {
	var he *HTTPError
	if errors.As(err, &he) {
		if he.StatusCode >= 500 {
			return ErrorClassServer
		}
		return ErrorClassClient
	}
	var te *TransportError
	if errors.As(err, &te) && te.Op == opDecode {
		return ErrorClassDecode
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}
