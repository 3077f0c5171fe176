package classifiers

import (
	"context"

	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/platform/llm"
)

// MenuExtractionVerdict is the classifier's output. Every
// option found is returned even when the menu is judged incomplete.
type MenuExtractionVerdict struct {
	Options    domain.Menu
	Complete   bool
	Confidence float64
	Reason     string
}

// ExtractMenu pulls {digit,label} options out of utterance. Labels are
// lowercased and trimmed before comparison. On transient LLM failure it
// returns zero options and complete=false so the orchestrator treats the
// turn conservatively.
func ExtractMenu(ctx context.Context, client llm.Client, model string, utterance string) MenuExtractionVerdict {
	req := llm.Request{
		System:      menuExtractionSystemPrompt,
		User:        utterance,
		SchemaName:  "menu_extraction",
		Schema:      menuExtractionSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   400,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return MenuExtractionVerdict{Complete: false, Confidence: 0, Reason: "llm failure: " + err.Error()}
	}

	var opts domain.Menu
	if rawOpts, ok := obj["options"].([]any); ok {
		for _, raw := range rawOpts {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			digit := asString(m, "digit")
			label := normalizeLabel(asString(m, "label"))
			if digit == "" || label == "" {
				continue
			}
			opts = append(opts, domain.MenuOption{Digit: digit, Label: label})
		}
	}

	return MenuExtractionVerdict{
		Options:    opts,
		Complete:   asBool(obj, "complete"),
		Confidence: clampConfidence(asFloat(obj, "confidence")),
		Reason:     asString(obj, "reason"),
	}
}

const menuExtractionSystemPrompt = `You extract the menu options offered in an IVR utterance.
Return every (digit,label) pair you can find, even if the utterance seems
cut off mid-menu. "complete" is true only if the menu reads as a finished,
self-contained list of options (no dangling "and" / "press" at the end).
Lowercase and trim every label. Respond only with the required JSON fields.`
