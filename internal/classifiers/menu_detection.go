package classifiers

import (
	"context"
	"regexp"

	"github.com/ivrline/callnav/internal/platform/llm"
)

// MenuDetectionVerdict is the classifier's output.
type MenuDetectionVerdict struct {
	IsMenu     bool
	Confidence float64
	Reason     string
}

var menuPatternFallback = regexp.MustCompile(`(?i)(press|select|choose|dial|option)\s*[0-9*#]`)

// DetectMenu asks the LLM whether utterance reads as an IVR menu. On any
// transient LLM failure it falls back to a pattern scan rather than
// failing the turn.
func DetectMenu(ctx context.Context, client llm.Client, model string, utterance string) MenuDetectionVerdict {
	req := llm.Request{
		System:      menuDetectionSystemPrompt,
		User:        utterance,
		SchemaName:  "menu_detection",
		Schema:      menuDetectionSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   200,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return fallbackMenuDetection(utterance)
	}
	return MenuDetectionVerdict{
		IsMenu:     asBool(obj, "is_menu"),
		Confidence: clampConfidence(asFloat(obj, "confidence")),
		Reason:     asString(obj, "reason"),
	}
}

func fallbackMenuDetection(utterance string) MenuDetectionVerdict {
	if menuPatternFallback.MatchString(utterance) {
		return MenuDetectionVerdict{IsMenu: true, Confidence: 0.5, Reason: "pattern fallback: matched press/select/choose/dial/option + digit"}
	}
	return MenuDetectionVerdict{IsMenu: false, Confidence: 0, Reason: "pattern fallback: no menu cue found"}
}

const menuDetectionSystemPrompt = `You classify a single utterance from an automated phone system (IVR).
Decide whether the utterance is presenting a menu of options to choose from
(e.g. "press 1 for sales, press 2 for support"), as opposed to a greeting,
a hold message, a transfer announcement, or ordinary conversation.
Respond only with the required JSON fields.`
