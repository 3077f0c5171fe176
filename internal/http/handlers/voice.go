package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ivrline/callnav/internal/config"
	"github.com/ivrline/callnav/internal/orchestrator"
	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/telephony"
)

// VoiceHandler decodes carrier webhook callbacks and renders the
// orchestrator's telephony response.
// Field names (CallSid, SpeechResult, Digits) follow the carrier's own
// form-encoding convention; the core never assumes a specific carrier
// beyond this one request-shaped boundary.
type VoiceHandler struct {
	log          *logger.Logger
	orchestrator *orchestrator.Orchestrator
	baseURL      string
}

func NewVoiceHandler(log *logger.Logger, o *orchestrator.Orchestrator, baseURL string) *VoiceHandler {
	return &VoiceHandler{log: log.With("component", "VoiceHandler"), orchestrator: o, baseURL: baseURL}
}

func (h *VoiceHandler) render(c *gin.Context, resp *telephony.Response) {
	raw, err := telephony.Render(resp)
	if err != nil {
		h.log.Error("failed to render telephony response", "error", err)
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(`<?xml version="1.0" encoding="UTF-8"?><Response><Say>I'm sorry, something went wrong on this call. Goodbye.</Say><Hangup/></Response>`))
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", raw)
}

func (h *VoiceHandler) speechURL() string {
	return h.baseURL + "/voice/speech-turn"
}

func (h *VoiceHandler) transferStatusURL() string {
	return h.baseURL + "/voice/transfer-status"
}

func overridesFromQuery(c *gin.Context) config.Overrides {
	return config.Overrides{
		TransferDestination: c.Query("transfer_destination"),
		CallPurpose:         c.Query("call_purpose"),
		CustomInstructions:  c.Query("custom_instructions"),
		UserContactPhone:    c.Query("user_contact_phone"),
		UserContactEmail:    c.Query("user_contact_email"),
	}
}

// CallStart handles the call-start webhook.
func (h *VoiceHandler) CallStart(c *gin.Context) {
	in := orchestrator.CallStartInput{
		CallID:          c.PostForm("CallSid"),
		To:              c.PostForm("To"),
		From:            c.PostForm("From"),
		Overrides:       overridesFromQuery(c),
		SpeechActionURL: h.speechURL(),
	}
	h.render(c, h.orchestrator.HandleCallStart(in))
}

// SpeechTurn handles the primary speech-turn webhook.
func (h *VoiceHandler) SpeechTurn(c *gin.Context) {
	silenceMS := 0
	if raw := c.PostForm("SilenceDurationMs"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			silenceMS = parsed
		}
	}
	in := orchestrator.TurnInput{
		CallID:            c.PostForm("CallSid"),
		Utterance:         c.PostForm("SpeechResult"),
		SilenceMS:         silenceMS,
		Overrides:         overridesFromQuery(c),
		SpeechActionURL:   h.speechURL(),
		TransferStatusURL: h.transferStatusURL(),
	}
	h.render(c, h.orchestrator.HandleSpeechTurn(c.Request.Context(), in))
}

// DigitTurn handles the digit-turn webhook.
func (h *VoiceHandler) DigitTurn(c *gin.Context) {
	in := orchestrator.DigitTurnInput{
		CallID:          c.PostForm("CallSid"),
		Digits:          c.PostForm("Digits"),
		SpeechActionURL: h.speechURL(),
	}
	h.render(c, h.orchestrator.HandleDigitTurn(in))
}

// CallStatus handles the carrier's terminal call-status callback. This
// response is discarded by the carrier, so it gets a bare 204 rather than
// a telephony document.
func (h *VoiceHandler) CallStatus(c *gin.Context) {
	h.orchestrator.HandleCallStatus(orchestrator.CallStatusInput{
		CallID: c.PostForm("CallSid"),
		Status: c.PostForm("CallStatus"),
	})
	c.Status(http.StatusNoContent)
}

// TransferStatus handles the transfer leg's status callback. This may
// arrive before or after the speech-turn that triggered it.
func (h *VoiceHandler) TransferStatus(c *gin.Context) {
	status := c.PostForm("DialCallStatus")
	h.orchestrator.HandleTransferStatus(orchestrator.TransferStatusInput{
		CallID:    c.PostForm("CallSid"),
		Succeeded: status == "completed" || status == "answered",
	})
	c.Status(http.StatusNoContent)
}
