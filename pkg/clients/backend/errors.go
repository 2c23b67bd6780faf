package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies backend failures.
type Kind string

const (
	KindTransport       Kind = "transport"
	KindUnauthenticated Kind = "unauthenticated"
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindServer          Kind = "server"
)

var (
	// ErrTransport indicates the backend could not be reached.
	ErrTransport = errors.New("backend unreachable")
	// ErrUnauthenticated indicates a 401 from the backend.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionExpired indicates the refresh-and-retry cycle failed and the session was cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrValidation indicates the backend rejected the request payload.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrServer indicates a backend fault.
	ErrServer = errors.New("backend server error")
)

const genericFailure = "Something went wrong while contacting the server. Please try again."

// Error is returned by every gateway call that fails.
type Error struct {
	Kind       Kind
	StatusCode int
	Method     string
	Path       string
	Message    string
	Fields     map[string]string
	Expired    bool
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindTransport:
		return fmt.Sprintf("backend %s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("backend %s %s: status=%d, %s: %s", e.Method, e.Path, e.StatusCode, e.Kind, e.Message)
	default:
		return fmt.Sprintf("backend %s %s: status=%d, %s", e.Method, e.Path, e.StatusCode, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUnauthenticated:
		return e.Kind == KindUnauthenticated
	case ErrSessionExpired:
		return e.Expired
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// UserMessage is the text safe to show an operator. Validation and lookup
// failures surface the server message; faults stay generic.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindValidation, KindNotFound:
		if e.Message != "" {
			return e.Message
		}
		return http.StatusText(e.StatusCode)
	case KindUnauthenticated:
		if e.Expired {
			return "Your session has expired. Please log in again."
		}
		if e.Message != "" {
			return e.Message
		}
		return "Authentication required"
	default:
		return genericFailure
	}
}

// errorBody is the backend error envelope. JWT failures use "msg".
type errorBody struct {
	Error  string            `json:"error"`
	Msg    string            `json:"msg"`
	Fields map[string]string `json:"fields"`
}

func (b *errorBody) message() string {
	if b == nil {
		return ""
	}
	if b.Error != "" {
		return b.Error
	}
	return b.Msg
}

func kindFor(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return KindValidation
	default:
		return KindServer
	}
}
