package classifiers

import (
	"context"

	"github.com/ivrline/callnav/internal/platform/llm"
)

// TransferRequestVerdict is the classifier's output.
type TransferRequestVerdict struct {
	WantsTransfer bool
	Confidence    float64
	Reason        string
}

// DetectTransferRequest distinguishes a transfer announcement/request
// ("I'm transferring you now", "I want a representative") from a menu
// option that merely names a representative queue. On transient LLM
// failure it conservatively reports no transfer request.
func DetectTransferRequest(ctx context.Context, client llm.Client, model string, utterance string) TransferRequestVerdict {
	req := llm.Request{
		System:      transferRequestSystemPrompt,
		User:        utterance,
		SchemaName:  "transfer_request",
		Schema:      transferRequestSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   200,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return TransferRequestVerdict{WantsTransfer: false, Confidence: 0, Reason: "llm failure: " + err.Error()}
	}
	return TransferRequestVerdict{
		WantsTransfer: asBool(obj, "wants_transfer"),
		Confidence:    clampConfidence(asFloat(obj, "confidence")),
		Reason:        asString(obj, "reason"),
	}
}

const transferRequestSystemPrompt = `You decide whether an IVR utterance is announcing or offering a transfer
to a human right now (e.g. "I'm transferring you now", "connecting you to
an agent", "let me get you a representative"), as opposed to simply
naming a menu option whose label mentions "representative" among a list
of other options. Only a genuine transfer announcement or explicit offer
counts as wants_transfer=true. Respond only with the required JSON fields.`
