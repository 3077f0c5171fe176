/*
Package config implements the Configuration Resolver: a 4-layer merge of
per-turn query overrides, per-call state, persisted user settings, and
process environment defaults, highest layer wins.
*/
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/platform/envutil"
	"github.com/ivrline/callnav/internal/platform/logger"
)

// Overrides is the per-turn query-parameter layer (highest priority).
// Empty fields mean "not overridden this turn".
type Overrides struct {
	TransferDestination string
	CallPurpose         string
	CustomInstructions  string
	UserContactPhone    string
	UserContactEmail    string
}

// PersistedSettings is the optional YAML-backed user-settings layer.
type PersistedSettings struct {
	TransferDestination string  `yaml:"transfer_destination"`
	CallPurpose         string  `yaml:"call_purpose"`
	CustomInstructions  string  `yaml:"custom_instructions"`
	UserContactPhone    string  `yaml:"user_contact_phone"`
	UserContactEmail    string  `yaml:"user_contact_email"`
	TTSVoice            string  `yaml:"tts_voice"`
	TTSLanguage         string  `yaml:"tts_language"`
	LLMModel            string  `yaml:"llm_model"`
	LLMTemperature      float64 `yaml:"llm_temperature"`
	LLMMaxTokens        int     `yaml:"llm_max_tokens"`
}

// LoadPersistedSettings reads an optional settings file. A missing file
// is not an error — callers fall through to the environment layer.
func LoadPersistedSettings(path string, log *logger.Logger) PersistedSettings {
	var settings PersistedSettings
	if path == "" {
		return settings
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Debug("no persisted settings file found, skipping layer", "path", path, "error", err)
		}
		return settings
	}
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		if log != nil {
			log.Warn("persisted settings file is not valid YAML, skipping layer", "path", path, "error", err)
		}
		return PersistedSettings{}
	}
	return settings
}

// Resolver merges the four layers. It is built once at startup from the
// environment and an optional persisted-settings snapshot.
type Resolver struct {
	log *logger.Logger

	defaultTransferDestination string
	defaultCallPurpose         string
	defaultUserContactPhone    string
	defaultUserContactEmail    string

	llmModel       string
	llmTemperature float64
	llmMaxTokens   int
	ttsVoice       string
	ttsLanguage    string
}

// NewResolver reads the environment-default layer once at startup.
func NewResolver(log *logger.Logger) *Resolver {
	return &Resolver{
		log:                        log.With("component", "ConfigResolver"),
		defaultTransferDestination: envutil.GetEnv("DEFAULT_TRANSFER_DESTINATION", "", log),
		defaultCallPurpose:         envutil.GetEnv("DEFAULT_CALL_PURPOSE", "speak with a representative", log),
		defaultUserContactPhone:    envutil.GetEnv("DEFAULT_USER_CONTACT_PHONE", "", log),
		defaultUserContactEmail:    envutil.GetEnv("DEFAULT_USER_CONTACT_EMAIL", "", log),
		llmModel:                   envutil.GetEnv("LLM_MODEL", "gpt-4o-mini", log),
		llmTemperature:             envutil.GetEnvAsFloat("LLM_TEMPERATURE", 0.2, log),
		llmMaxTokens:               envutil.GetEnvAsInt("LLM_MAX_TOKENS", 300, log),
		ttsVoice:                   envutil.GetEnv("DEFAULT_TTS_VOICE", "alice", log),
		ttsLanguage:                envutil.GetEnv("DEFAULT_TTS_LANGUAGE", "en-US", log),
	}
}

// Resolve merges overrides > callState.Config > persisted > environment,
// highest wins per-field.
func (r *Resolver) Resolve(overrides Overrides, callConfig domain.CallConfig, persisted PersistedSettings) domain.CallConfig {
	out := domain.CallConfig{
		LLMModel:       r.llmModel,
		LLMTemperature: r.llmTemperature,
		LLMMaxTokens:   r.llmMaxTokens,
		TTSVoice:       r.ttsVoice,
		TTSLanguage:    r.ttsLanguage,
	}

	applyPersisted(&out, persisted)
	applyCallConfig(&out, callConfig)
	applyOverrides(&out, overrides)

	if out.TransferDestination == "" {
		out.TransferDestination = r.defaultTransferDestination
	}
	if out.CallPurpose == "" {
		out.CallPurpose = r.defaultCallPurpose
	}
	if out.UserContactPhone == "" {
		out.UserContactPhone = r.defaultUserContactPhone
	}
	if out.UserContactEmail == "" {
		out.UserContactEmail = r.defaultUserContactEmail
	}
	return out
}

func applyPersisted(out *domain.CallConfig, p PersistedSettings) {
	if p.TransferDestination != "" {
		out.TransferDestination = p.TransferDestination
	}
	if p.CallPurpose != "" {
		out.CallPurpose = p.CallPurpose
	}
	if p.CustomInstructions != "" {
		out.CustomInstructions = p.CustomInstructions
	}
	if p.UserContactPhone != "" {
		out.UserContactPhone = p.UserContactPhone
	}
	if p.UserContactEmail != "" {
		out.UserContactEmail = p.UserContactEmail
	}
	if p.TTSVoice != "" {
		out.TTSVoice = p.TTSVoice
	}
	if p.TTSLanguage != "" {
		out.TTSLanguage = p.TTSLanguage
	}
	if p.LLMModel != "" {
		out.LLMModel = p.LLMModel
	}
	if p.LLMTemperature != 0 {
		out.LLMTemperature = p.LLMTemperature
	}
	if p.LLMMaxTokens != 0 {
		out.LLMMaxTokens = p.LLMMaxTokens
	}
}

func applyCallConfig(out *domain.CallConfig, c domain.CallConfig) {
	if c.TransferDestination != "" {
		out.TransferDestination = c.TransferDestination
	}
	if c.CallPurpose != "" {
		out.CallPurpose = c.CallPurpose
	}
	if c.CustomInstructions != "" {
		out.CustomInstructions = c.CustomInstructions
	}
	if c.UserContactPhone != "" {
		out.UserContactPhone = c.UserContactPhone
	}
	if c.UserContactEmail != "" {
		out.UserContactEmail = c.UserContactEmail
	}
	if c.TTSVoice != "" {
		out.TTSVoice = c.TTSVoice
	}
	if c.TTSLanguage != "" {
		out.TTSLanguage = c.TTSLanguage
	}
	if c.LLMModel != "" {
		out.LLMModel = c.LLMModel
	}
	if c.LLMTemperature != 0 {
		out.LLMTemperature = c.LLMTemperature
	}
	if c.LLMMaxTokens != 0 {
		out.LLMMaxTokens = c.LLMMaxTokens
	}
}

func applyOverrides(out *domain.CallConfig, o Overrides) {
	if o.TransferDestination != "" {
		out.TransferDestination = o.TransferDestination
	}
	if o.CallPurpose != "" {
		out.CallPurpose = o.CallPurpose
	}
	if o.CustomInstructions != "" {
		out.CustomInstructions = o.CustomInstructions
	}
	if o.UserContactPhone != "" {
		out.UserContactPhone = o.UserContactPhone
	}
	if o.UserContactEmail != "" {
		out.UserContactEmail = o.UserContactEmail
	}
}
