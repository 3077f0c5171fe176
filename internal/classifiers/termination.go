package classifiers

import (
	"context"
	"fmt"

	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/platform/llm"
)

// TerminationVerdict is the classifier's output.
type TerminationVerdict struct {
	ShouldTerminate bool
	Reason          domain.TerminationReason
	Confidence      float64
	Message         string
}

// DetectTermination decides whether the call has reached voicemail, a
// closed-business announcement, or a dead end. Business-closed dominates
// even when the closed message also offers automated options (balances,
// payments) — those are not a path to a live agent. On
// transient LLM failure it conservatively reports no termination.
func DetectTermination(ctx context.Context, client llm.Client, model string, utterance, previousUtterance string, silenceMS int) TerminationVerdict {
	req := llm.Request{
		System:      terminationSystemPrompt,
		User:        renderTerminationPrompt(utterance, previousUtterance, silenceMS),
		SchemaName:  "termination_detection",
		Schema:      terminationSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   250,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return TerminationVerdict{ShouldTerminate: false, Reason: domain.TerminationNone, Confidence: 0, Message: "llm failure: " + err.Error()}
	}
	reason := domain.TerminationReason(asString(obj, "reason"))
	switch reason {
	case domain.TerminationVoicemail, domain.TerminationClosed, domain.TerminationDeadEnd, domain.TerminationNone:
	default:
		reason = domain.TerminationNone
	}
	return TerminationVerdict{
		ShouldTerminate: asBool(obj, "should_terminate"),
		Reason:          reason,
		Confidence:      clampConfidence(asFloat(obj, "confidence")),
		Message:         asString(obj, "message"),
	}
}

func renderTerminationPrompt(utterance, previousUtterance string, silenceMS int) string {
	return fmt.Sprintf("Previous utterance: %q\nCurrent utterance: %q\nSilence before this utterance (ms): %d",
		previousUtterance, utterance, silenceMS)
}

const terminationSystemPrompt = `You decide whether an outbound call to a business should end now.
reason must be one of: "voicemail" (reached an answering machine / voicemail
greeting), "closed" (the business states it is closed, even if it then
offers automated self-service options like balance or payment lookups —
those do not lead to a live agent, so still terminate as "closed"),
"dead_end" (the call is going nowhere: silence, repeated unhelpful menus,
disconnection cues), or "none" (keep going). should_terminate is true for
any reason other than "none". message is a one-sentence explanation.
Respond only with the required JSON fields.`
