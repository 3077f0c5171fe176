package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivrline/callnav/internal/platform/ctxutil"
	"github.com/ivrline/callnav/internal/platform/logger"
)

// RequestLogger logs one line per webhook call. call_id comes from the
// form body (carrier webhooks are POST form-encoded, never query-only),
// and is hashed rather than redacted by the logger so calls stay
// correlatable across log lines without exposing carrier-assigned ids
// verbatim (internal/platform/logger's isHashKey).
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		td := ctxutil.GetTraceData(c.Request.Context())

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td != nil {
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
			if td.RequestID != "" {
				fields = append(fields, "request_id", td.RequestID)
			}
		}
		if callID := c.PostForm("CallSid"); callID != "" {
			fields = append(fields, "call_id", callID)
		}

		switch {
		case status >= 500:
			log.Error("webhook request", fields...)
		case status >= 400:
			log.Warn("webhook request", fields...)
		default:
			log.Info("webhook request", fields...)
		}
	}
}
