package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/telephony"
)

// TelephonyRecovery replaces gin's default recovery, which would otherwise
// send a bare 500 with no body. A carrier webhook must always get back a
// renderable response: an apology followed by hangup.
func TelephonyRecovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Error("panic in webhook handler, responding with apology", "recover", r, "path", c.FullPath())
				}
				raw, err := telephony.Render(telephony.NewApologyResponse())
				if err != nil {
					c.AbortWithStatus(http.StatusInternalServerError)
					return
				}
				c.Data(http.StatusOK, "application/xml; charset=utf-8", raw)
				c.Abort()
			}
		}()
		c.Next()
	}
}
