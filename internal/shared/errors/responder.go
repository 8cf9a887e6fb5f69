package errors

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates an application error into a problem. ok is false when the mapper
// does not recognise err.
type ErrorMapper func(err error) (problem ProblemDetail, ok bool)

// Responder writes problem responses. Errors no mapper recognises become 500s.
type Responder struct {
	mappers []ErrorMapper
}

// NewResponder builds a responder that consults mappers in order.
func NewResponder(mappers ...ErrorMapper) *Responder {
	return &Responder{mappers: mappers}
}

// DefaultResponder has no mappers; it serves middleware that only emits fixed problems.
var DefaultResponder = NewResponder()

// Respond fills in the instance path and trace id, then writes problem as application/problem+json.
func (r *Responder) Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		problem.TraceID = sc.TraceID().String()
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError maps err through the configured mappers.
func (r *Responder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

func (r *Responder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// ValidationFailed reports every rejected field at once.
func (r *Responder) ValidationFailed(c *gin.Context, fields map[string]string) {
	problem := ErrInvalidParameters.WithDetail(fmt.Sprintf("%d parameter(s) rejected", len(fields)))
	problem.Fields = fields
	r.Respond(c, problem)
}

// Unauthorized sends a 401 with a Basic challenge for realm.
func (r *Responder) Unauthorized(c *gin.Context, realm string) {
	c.Header("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", realm))
	r.Respond(c, ErrUnauthorized.WithDetail("valid credentials are required"))
}

// Recovery turns handler panics into a 500 problem response.
func (r *Responder) Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "handler panicked",
				slog.String("path", c.Request.URL.Path),
				slog.Any("panic", recovered))
		}
		r.Respond(c, ErrInternal.WithDetail("unexpected server error"))
		c.Abort()
	})
}
