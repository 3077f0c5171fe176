package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ivrline/callnav/internal/http/handlers"
	httpMW "github.com/ivrline/callnav/internal/http/middleware"
	"github.com/ivrline/callnav/internal/platform/logger"
)

// RouterConfig wires the webhook surface. Kept as a single struct with
// one field per handler, even though there is only one handler group
// here: it leaves room for an operator health/status surface without
// reshaping call sites.
type RouterConfig struct {
	Log          *logger.Logger
	VoiceHandler *httpH.VoiceHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(otelgin.Middleware("callnav"))
	r.Use(httpMW.TelephonyRecovery(cfg.Log))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	voice := r.Group("/voice")
	{
		if cfg.VoiceHandler != nil {
			voice.POST("/call-start", cfg.VoiceHandler.CallStart)
			voice.POST("/speech-turn", cfg.VoiceHandler.SpeechTurn)
			voice.POST("/digit-turn", cfg.VoiceHandler.DigitTurn)
			voice.POST("/call-status", cfg.VoiceHandler.CallStatus)
			voice.POST("/transfer-status", cfg.VoiceHandler.TransferStatus)
		}
	}

	return r
}
