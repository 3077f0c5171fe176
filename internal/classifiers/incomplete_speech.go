package classifiers

import (
	"context"

	"github.com/ivrline/callnav/internal/platform/llm"
)

// IncompleteSpeechVerdict is the classifier's output.
// SuggestedWaitSeconds is 0 when the classifier has no opinion on how
// long to wait.
type IncompleteSpeechVerdict struct {
	Incomplete           bool
	Confidence           float64
	Reason               string
	SuggestedWaitSeconds int
}

// DetectIncompleteSpeech judges whether utterance reads as cut off
// mid-sentence (trailing "and", "press", a dangling number) rather than
// a complete thought. On transient LLM failure it reports complete=true
// so a stalled call never waits forever on a classifier outage.
func DetectIncompleteSpeech(ctx context.Context, client llm.Client, model string, utterance string) IncompleteSpeechVerdict {
	req := llm.Request{
		System:      incompleteSpeechSystemPrompt,
		User:        utterance,
		SchemaName:  "incomplete_speech",
		Schema:      incompleteSpeechSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   150,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return IncompleteSpeechVerdict{Incomplete: false, Confidence: 0, Reason: "llm failure: " + err.Error()}
	}
	wait := int(asFloat(obj, "suggested_wait_seconds"))
	if wait < 0 {
		wait = 0
	}
	return IncompleteSpeechVerdict{
		Incomplete:           asBool(obj, "incomplete"),
		Confidence:           clampConfidence(asFloat(obj, "confidence")),
		Reason:               asString(obj, "reason"),
		SuggestedWaitSeconds: wait,
	}
}

const incompleteSpeechSystemPrompt = `You judge whether an IVR utterance was cut off mid-sentence rather than
finished as a complete thought (e.g. ends on "and", "press", a dangling
number, or an unfinished clause). If incomplete, suggest how many
additional seconds of silence should be given before treating the
speech as final; 0 if you have no opinion. Respond only with the
required JSON fields.`
