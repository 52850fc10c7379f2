package external

import (
	"errors"
	"fmt"
	"net/http"

	xerrors "referee-dashboard/internal/pkg/errors"
)

// ErrorKind classifies a failed call to the federation API.
type ErrorKind string

const (
	KindConfig    ErrorKind = "config"
	KindUpstream  ErrorKind = "upstream"
	KindTransport ErrorKind = "transport"
	KindTimeout   ErrorKind = "timeout"
	KindDecode    ErrorKind = "decode"
)

// ErrTokenRequired is returned by FetchBinary when no bearer token is given.
var ErrTokenRequired = errors.New("access token required")

// APIError is the only error type returned by Client.
type APIError struct {
	Kind   ErrorKind
	Method string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindUpstream:
		body := e.Body
		if body == "" {
			body = http.StatusText(e.Status)
		}
		return fmt.Sprintf("API externa error %d: %s", e.Status, body)
	case KindConfig:
		if e.Err != nil && !errors.Is(e.Err, xerrors.ErrNotConfigured) {
			return fmt.Sprintf("API externa mal configurada: %v", e.Err)
		}
		return "EXTERNAL_API_URL no configurada"
	case KindTimeout:
		return fmt.Sprintf("API externa timeout: %s %s", e.Method, e.Path)
	case KindDecode:
		return fmt.Sprintf("API externa respuesta inválida en %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("API externa no disponible: %s %s: %v", e.Method, e.Path, e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind of err, or "" when err is not an APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports an upstream 404.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}
