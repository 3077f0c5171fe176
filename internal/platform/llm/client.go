// Package llm is the typed client for OpenAI-compatible chat completions
// used by every classifier and by the orchestrator's conversational reply.
//
// It exposes a single operation, Analyze, which enforces a strict
// JSON-schema response format and a per-call deadline. Retries are not
// automatic; that decision is left to the caller, but the client does
// classify errors as retryable/non-retryable so a caller that wants to
// retry can do so cheaply.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ivrline/callnav/internal/platform/apierr"
	"github.com/ivrline/callnav/internal/platform/httpx"
	"github.com/ivrline/callnav/internal/platform/logger"
)

// CallDeadline is the hard per-call ceiling applied to every Analyze call.
const CallDeadline = 15 * time.Second

// MaxClassifierTemperature is the ceiling enforced on every classifier
// call: free-form completions are forbidden on classifier calls, and
// temperature must stay low (≤0.3).
const MaxClassifierTemperature = 0.3

// Kind tags the distinct failure modes a caller needs to branch on.
type Kind string

const (
	KindNetwork        Kind = "network"
	KindTimeout        Kind = "timeout"
	KindInvalidJSON    Kind = "invalid_json"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindRefused        Kind = "refused"
)

// Error wraps a Kind alongside the underlying error so callers (and
// classifiers in particular) can tell transient failures apart from
// programmer errors without string-matching.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Request is one Analyze call: a system+user message pair, a strict JSON
// schema the reply must satisfy, and the model parameters.
type Request struct {
	System      string
	User        string
	SchemaName  string
	Schema      map[string]any
	Model       string
	Temperature float64
	MaxTokens   int
}

// Client is the single operation every classifier depends on.
type Client interface {
	Analyze(ctx context.Context, req Request) (map[string]any, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New builds a Client from LLM_API_KEY / LLM_BASE_URL / LLM_TIMEOUT_SECONDS.
func New(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("LLM_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY")
	}
	baseURL := strings.TrimSpace(os.Getenv("LLM_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 15
	if v := strings.TrimSpace(os.Getenv("LLM_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Type       string         `json:"type"`
	JSONSchema jsonSchemaBody `json:"json_schema"`
}

type jsonSchemaBody struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatCompletionsRequest struct {
	Model          string           `json:"model"`
	Messages       []chatMessage    `json:"messages"`
	Temperature    *float64         `json:"temperature,omitempty"`
	MaxTokens      int              `json:"max_tokens,omitempty"`
	ResponseFormat jsonSchemaFormat `json:"response_format"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze performs one strict-JSON chat call within CallDeadline and
// parses the reply against req.Schema's name. It never auto-retries.
func (c *client) Analyze(ctx context.Context, req Request) (map[string]any, error) {
	if req.SchemaName == "" || req.Schema == nil {
		return nil, &Error{Kind: KindSchemaMismatch, Err: errors.New("schema and schemaName are required")}
	}

	temp := req.Temperature
	if temp > MaxClassifierTemperature {
		temp = MaxClassifierTemperature
	}

	ctx, cancel := context.WithTimeout(ctx, CallDeadline)
	defer cancel()

	body := chatCompletionsRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: &temp,
		MaxTokens:   req.MaxTokens,
		ResponseFormat: jsonSchemaFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaBody{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.Schema,
			},
		},
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindInvalidJSON, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: KindTimeout, Err: err}
		}
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := apierr.New(resp.StatusCode, "llm_error", fmt.Errorf("%s", strings.TrimSpace(string(respBytes))))
		if httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return nil, &Error{Kind: KindNetwork, Err: apiErr}
		}
		return nil, &Error{Kind: KindNetwork, Err: apiErr}
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, &Error{Kind: KindInvalidJSON, Err: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &Error{Kind: KindInvalidJSON, Err: errors.New("no choices in response")}
	}
	choice := parsed.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, &Error{Kind: KindRefused, Err: errors.New(choice.Message.Refusal)}
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, &Error{Kind: KindInvalidJSON, Err: errors.New("empty message content")}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(choice.Message.Content), &obj); err != nil {
		return nil, &Error{Kind: KindSchemaMismatch, Err: fmt.Errorf("parse model JSON: %w", err)}
	}
	return obj, nil
}

// IsTransient reports whether err is a transient LLM failure
// (network/timeout/invalid JSON) — the cases where a caller should fall
// back to a conservative default rather than propagate the error.
func IsTransient(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		switch le.Kind {
		case KindNetwork, KindTimeout, KindInvalidJSON, KindRefused:
			return true
		}
	}
	return errors.Is(err, context.DeadlineExceeded)
}
