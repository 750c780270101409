package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/littlewanderers/frontdesk/pkg/logctx"
)

// RequestLoggerMiddleware attaches a request-scoped logger enriched with
// trace_id to gin.Context and request context.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetString(logctx.GinTraceIDKey)

		reqLogger := base.With("trace_id", traceID)
		c.Set(logctx.GinLoggerKey, reqLogger)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), reqLogger))

		// mirror trace id to response header when available
		if traceID != "" {
			c.Writer.Header().Set(HeaderRequestID, traceID)
		}

		c.Next()
	}
}

// withUser rebinds the request logger to the authenticated caller.
func withUser(c *gin.Context, base *zap.SugaredLogger, userID string) {
	l := logctx.FromGin(c, base).With("user_id", userID)
	c.Set(logctx.GinLoggerKey, l)
	ctx := logctx.WithUserID(c.Request.Context(), userID)
	c.Request = c.Request.WithContext(logctx.WithLogger(ctx, l))
}
