package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivrline/callnav/internal/callstate"
	"github.com/ivrline/callnav/internal/classifiers"
	"github.com/ivrline/callnav/internal/config"
	"github.com/ivrline/callnav/internal/orchestrator"
	"github.com/ivrline/callnav/internal/platform/llm"
	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/voiceprocessor"
)

type noopHistory struct{}

func (noopHistory) StartCall(callID, to, from, purpose string)                 {}
func (noopHistory) AddConversation(callID, role, text string, at time.Time)    {}
func (noopHistory) AddDigit(callID, digit string, matchedMenu any)             {}
func (noopHistory) AddMenu(callID string, options any, complete bool)          {}
func (noopHistory) AddTransfer(callID, destination string)                    {}
func (noopHistory) UpdateTransferSuccess(callID string, succeeded bool)        {}
func (noopHistory) AddTermination(callID, reason, message string)             {}
func (noopHistory) EndCall(callID, status string)                             {}

type erroringLLM struct{}

func (erroringLLM) Analyze(context.Context, llm.Request) (map[string]any, error) {
	return nil, &llm.Error{Kind: llm.KindNetwork}
}

func newTestVoiceHandler(t *testing.T) *VoiceHandler {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)

	store := callstate.New(log)
	suite := classifiers.NewSuite(erroringLLM{}, "test-model")
	processor := voiceprocessor.New(suite)
	resolver := config.NewResolver(log)

	o := orchestrator.New(orchestrator.Deps{
		Log:        log,
		Store:      store,
		Resolver:   resolver,
		Processor:  processor,
		History:    noopHistory{},
		LLMClient:  erroringLLM{},
		AgentModel: "test-model",
	})

	return NewVoiceHandler(log, o, "http://localhost:8080")
}

func TestVoiceHandler_CallStart_RendersGatherXML(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestVoiceHandler(t)

	r := gin.New()
	r.POST("/voice/call-start", h.CallStart)

	form := url.Values{"CallSid": {"call-xyz"}, "To": {"+15550000000"}, "From": {"+15551111111"}}
	req := httptest.NewRequest(http.MethodPost, "/voice/call-start", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Gather") {
		t.Fatalf("expected a Gather verb in the rendered response, got %q", body)
	}
	ct := rec.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("expected an XML content type, got %q", ct)
	}
}

func TestVoiceHandler_CallStatus_ReturnsNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestVoiceHandler(t)

	r := gin.New()
	r.POST("/voice/call-status", h.CallStatus)

	form := url.Values{"CallSid": {"call-abc"}, "CallStatus": {"completed"}}
	req := httptest.NewRequest(http.MethodPost, "/voice/call-status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestVoiceHandler_TransferStatus_ReturnsNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestVoiceHandler(t)

	r := gin.New()
	r.POST("/voice/transfer-status", h.TransferStatus)

	form := url.Values{"CallSid": {"call-def"}, "DialCallStatus": {"completed"}}
	req := httptest.NewRequest(http.MethodPost, "/voice/transfer-status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
