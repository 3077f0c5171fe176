package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ivrline/callnav/internal/platform/apierr"
	"github.com/ivrline/callnav/internal/platform/httpx"
	"github.com/ivrline/callnav/internal/platform/logger"
)

// Originator is the outbound-call collaborator. The core only depends
// on this interface; the carrier itself is out of scope.
type Originator interface {
	OriginateCall(ctx context.Context, destination, startURL string) (callID string, err error)
	SendDigits(ctx context.Context, callID, digits string) error
	FetchCallStatus(ctx context.Context, callID string) (status string, err error)
}

// httpOriginator is a generic REST-backed Originator. It assumes the
// carrier exposes call origination, mid-call signaling, and status
// lookups as simple form-encoded POSTs/GETs against a base URL with
// basic-auth credentials — the lowest common denominator across
// telephony REST APIs, and the only telephony fact the core is allowed
// to assume.
type httpOriginator struct {
	log        *logger.Logger
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	callerNum  string
}

// NewHTTPOriginator builds an Originator from TELEPHONY_ACCOUNT_SID /
// TELEPHONY_AUTH_TOKEN / TELEPHONY_CALLER_NUMBER.
func NewHTTPOriginator(log *logger.Logger) (Originator, error) {
	sid := strings.TrimSpace(os.Getenv("TELEPHONY_ACCOUNT_SID"))
	token := strings.TrimSpace(os.Getenv("TELEPHONY_AUTH_TOKEN"))
	caller := strings.TrimSpace(os.Getenv("TELEPHONY_CALLER_NUMBER"))
	if sid == "" || token == "" {
		return nil, fmt.Errorf("missing TELEPHONY_ACCOUNT_SID or TELEPHONY_AUTH_TOKEN")
	}
	baseURL := strings.TrimSpace(os.Getenv("TELEPHONY_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://telephony.example-carrier.com/v1"
	}
	return &httpOriginator{
		log:        log.With("component", "TelephonyOriginator"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: sid,
		authToken:  token,
		callerNum:  caller,
	}, nil
}

type originateResponse struct {
	CallID string `json:"call_id"`
}

func (o *httpOriginator) OriginateCall(ctx context.Context, destination, startURL string) (string, error) {
	form := url.Values{}
	form.Set("To", destination)
	form.Set("From", o.callerNum)
	form.Set("Url", startURL)

	resp, err := o.doForm(ctx, http.MethodPost, "/Accounts/"+o.accountSID+"/Calls", form)
	if err != nil {
		return "", err
	}
	var parsed originateResponse
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return "", fmt.Errorf("originate call: parse response: %w", err)
	}
	if parsed.CallID == "" {
		return "", fmt.Errorf("originate call: carrier returned no call id")
	}
	return parsed.CallID, nil
}

func (o *httpOriginator) SendDigits(ctx context.Context, callID, digits string) error {
	form := url.Values{}
	form.Set("Digits", digits)
	_, err := o.doForm(ctx, http.MethodPost, "/Accounts/"+o.accountSID+"/Calls/"+callID+"/Digits", form)
	return err
}

type statusResponse struct {
	Status string `json:"status"`
}

func (o *httpOriginator) FetchCallStatus(ctx context.Context, callID string) (string, error) {
	resp, err := o.doForm(ctx, http.MethodGet, "/Accounts/"+o.accountSID+"/Calls/"+callID, nil)
	if err != nil {
		return "", err
	}
	var parsed statusResponse
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return "", fmt.Errorf("fetch call status: parse response: %w", err)
	}
	return parsed.Status, nil
}

func (o *httpOriginator) doForm(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	var body io.Reader
	fullURL := o.baseURL + path
	if method == http.MethodGet {
		if form != nil {
			fullURL += "?" + form.Encode()
		}
	} else {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.SetBasicAuth(o.accountSID, o.authToken)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		apiErr := apierr.New(resp.StatusCode, "telephony_error", fmt.Errorf("%s", strings.TrimSpace(string(raw))))
		o.log.Warn("telephony collaborator returned an error status",
			"status", resp.StatusCode, "retryable", httpx.IsRetryableHTTPStatus(resp.StatusCode))
		return nil, apiErr
	}
	return raw, nil
}
