package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ivrline/callnav/internal/platform/ctxutil"
)

// AttachRequestContext makes sure the request context carries a
// TraceData, seeding an empty one when no earlier middleware (such as
// AttachTraceContext) has attached it.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if ctxutil.GetTraceData(ctx) == nil {
			ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{})
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
