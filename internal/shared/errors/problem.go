// Package errors renders RFC 7807 problem responses for the orders API.
package errors

import "net/http"

// ProblemDetail is the application/problem+json body. See https://www.rfc-editor.org/rfc/rfc7807.
type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	// Instance is the request path that failed.
	Instance string `json:"instance,omitempty"`
	// Fields maps each rejected query or body field to the reason it was rejected.
	Fields map[string]string `json:"fields,omitempty"`
	// TraceID links the response to the request's span when tracing is active.
	TraceID string `json:"traceId,omitempty"`
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

const (
	TypeInvalidParameters = "/problems/invalid-parameters"
	TypeBadRequest        = "/problems/bad-request"
	TypeUnauthorized      = "/problems/unauthorized"
	TypeOrderNotFound     = "/problems/order-not-found"
	TypeConflict          = "/problems/conflict"
	TypeInternal          = "/problems/internal-error"
)

var (
	// ErrInvalidParameters carries per-field reasons in Fields.
	ErrInvalidParameters = ProblemDetail{
		Type:   TypeInvalidParameters,
		Title:  "Invalid Parameters",
		Status: http.StatusBadRequest,
	}

	ErrBadRequest = ProblemDetail{
		Type:   TypeBadRequest,
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
	}

	ErrUnauthorized = ProblemDetail{
		Type:   TypeUnauthorized,
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
	}

	ErrOrderNotFound = ProblemDetail{
		Type:   TypeOrderNotFound,
		Title:  "Order Not Found",
		Status: http.StatusNotFound,
	}

	// ErrConflict covers duplicate imports and an exhausted id space.
	ErrConflict = ProblemDetail{
		Type:   TypeConflict,
		Title:  "Conflict",
		Status: http.StatusConflict,
	}

	ErrInternal = ProblemDetail{
		Type:   TypeInternal,
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
	}
)
