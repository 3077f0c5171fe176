package classifiers

import (
	"context"

	"github.com/ivrline/callnav/internal/platform/llm"
)

// HumanConfirmationVerdict is the classifier's output.
type HumanConfirmationVerdict struct {
	IsHuman    bool
	Confidence float64
	Reason     string
}

// DetectHumanConfirmation interprets a reply to "Am I speaking with a
// real person or is this the automated system?" On transient LLM failure
// it conservatively reports not-confirmed so the transfer gate never
// opens on a guess.
func DetectHumanConfirmation(ctx context.Context, client llm.Client, model string, utterance string) HumanConfirmationVerdict {
	req := llm.Request{
		System:      humanConfirmationSystemPrompt,
		User:        utterance,
		SchemaName:  "human_confirmation",
		Schema:      humanConfirmationSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   150,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return HumanConfirmationVerdict{IsHuman: false, Confidence: 0, Reason: "llm failure: " + err.Error()}
	}
	return HumanConfirmationVerdict{
		IsHuman:    asBool(obj, "is_human"),
		Confidence: clampConfidence(asFloat(obj, "confidence")),
		Reason:     asString(obj, "reason"),
	}
}

const humanConfirmationSystemPrompt = `The caller was just asked: "Am I speaking with a real person or is this
the automated system?" Classify whether their reply confirms a human
answered (is_human=true) or confirms it is still the automated system
(is_human=false). Respond only with the required JSON fields.`
