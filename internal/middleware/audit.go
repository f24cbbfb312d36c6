package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/query-params-practice/internal/queue"
)

// AuditSink accepts served-query events without blocking.  It reports
// false when the event had to be dropped.
type AuditSink interface {
	Enqueue(ev queue.QueryServedEvent) bool
}

// Audit emits one QueryServedEvent per request to sink once the handler
// has returned.  A nil sink disables the middleware.
func Audit(sink AuditSink) echo.MiddlewareFunc {
	if sink == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			ev := queue.QueryServedEvent{
				RequestID: GetRequestID(c),
				Method:    req.Method,
				Route:     c.Path(),
				Path:      req.URL.Path,
				Query:     req.URL.RawQuery,
				Status:    statusOf(c.Response().Status, err),
				LatencyMS: time.Since(start).Milliseconds(),
				ClientIP:  c.RealIP(),
				ServedAt:  start.UTC().Format(time.RFC3339),
			}
			if !sink.Enqueue(ev) {
				auditDropped.Inc()
				GetLogger(c).Debug().Msg("audit event dropped")
			}
			return err
		}
	}
}
