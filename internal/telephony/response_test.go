package telephony

import (
	"strings"
	"testing"
)

func TestRender_GatherResponse(t *testing.T) {
	r := NewGatherResponse(GatherOptions{ActionURL: "https://example.com/speech-turn"})
	out, err := Render(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "<Gather") {
		t.Fatalf("expected a Gather verb, got %s", got)
	}
	if !strings.Contains(got, `action="https://example.com/speech-turn"`) {
		t.Fatalf("expected action url in output, got %s", got)
	}
}

func TestRender_TerminationResponseEndsWithHangup(t *testing.T) {
	r := NewTerminationResponse("", "", "")
	out, err := Render(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	sayIdx := strings.Index(got, "<Say")
	hangupIdx := strings.Index(got, "<Hangup")
	if sayIdx == -1 || hangupIdx == -1 || sayIdx > hangupIdx {
		t.Fatalf("expected Say before Hangup, got %s", got)
	}
	if !strings.Contains(got, "Thank you. Goodbye.") {
		t.Fatalf("expected default goodbye message, got %s", got)
	}
}

func TestRender_TransferResponseDialsDestination(t *testing.T) {
	r := NewTransferResponse(DialOptions{
		Destination:    "+15551234567",
		StatusCallback: "https://example.com/transfer-status",
		SayText:        "Hold on, please.",
		AnswerOnMedia:  true,
	})
	out, err := Render(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "+15551234567") {
		t.Fatalf("expected destination number in dial verb, got %s", got)
	}
	if !strings.Contains(got, `action="https://example.com/transfer-status"`) {
		t.Fatalf("expected status callback action, got %s", got)
	}
}

func TestRender_ApologyResponseNeverEmpty(t *testing.T) {
	out, err := Render(NewApologyResponse())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "<Hangup") {
		t.Fatalf("expected apology response to hang up, got %s", out)
	}
}
