package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "attribution/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// headerCloudTraceContext is set by Google front ends as "TRACE_ID/SPAN_ID;o=1".
const headerCloudTraceContext = "X-Cloud-Trace-Context"

// RequestIDMiddleware attaches a request ID and a request-scoped logger to every request.
type RequestIDMiddleware struct {
	logger *slog.Logger
}

// NewRequestIDMiddleware creates a new Request ID middleware
func NewRequestIDMiddleware(logger *slog.Logger) *RequestIDMiddleware {
	return &RequestIDMiddleware{
		logger: logger,
	}
}

// Process reuses the caller's request ID, falls back to the trace ID, and generates one otherwise.
func (m *RequestIDMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := requestIDFromHeaders(c)

		deliverycontext.SetRequestID(c, requestID)
		c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

		// The usecases read both from context.Context.
		ctx := deliverycontext.WithRequest(c.Request().Context(), m.logger, requestID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

func requestIDFromHeaders(c echo.Context) string {
	header := c.Request().Header
	if requestID := header.Get(deliverycontext.HeaderXRequestID); requestID != "" {
		return requestID
	}

	if trace := header.Get(headerCloudTraceContext); trace != "" {
		traceID, _, _ := strings.Cut(trace, "/")
		if traceID != "" {
			return traceID
		}
	}

	return uuid.New().String()
}
