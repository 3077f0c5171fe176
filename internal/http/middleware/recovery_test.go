package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTelephonyRecovery_PanicRendersApologyNotBareFiveHundred(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TelephonyRecovery(nil))
	r.POST("/voice/speech-turn", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/voice/speech-turn", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected a 200 telephony response even on panic, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Hangup/>") && !strings.Contains(body, "<Hangup></Hangup>") {
		t.Fatalf("expected the apology response to hang up, got %q", body)
	}
	if !strings.Contains(body, "Say") {
		t.Fatalf("expected the apology response to include a Say verb, got %q", body)
	}
}

func TestTelephonyRecovery_NoPanicPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TelephonyRecovery(nil))
	r.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("expected the handler's own response untouched, got status=%d body=%q", rec.Code, rec.Body.String())
	}
}
