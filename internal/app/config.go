package app

import (
	"github.com/ivrline/callnav/internal/platform/envutil"
	"github.com/ivrline/callnav/internal/platform/logger"
)

// Config is the process-wide, non-call-scoped configuration: the HTTP
// bind address, the LLM's agent model, and the base URL the webhook
// handlers stamp into every telephony response's action/status-callback
// URLs.
type Config struct {
	HTTPAddr              string
	BaseURL               string
	AgentModel            string
	PersistedSettingsPath string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		HTTPAddr:              envutil.GetEnv("HTTP_ADDR", ":8080", log),
		BaseURL:               envutil.GetEnv("CALL_BASE_URL", "http://localhost:8080", log),
		AgentModel:            envutil.GetEnv("LLM_MODEL", "gpt-4o-mini", log),
		PersistedSettingsPath: envutil.GetEnv("SETTINGS_FILE_PATH", "", log),
	}
}
