package classifiers

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/platform/llm"
)

// LoopDetectionVerdict is the classifier's output.
type LoopDetectionVerdict struct {
	IsLoop     bool
	Confidence float64
	Reason     string
}

// DetectLoop compares current against previousMenus for a semantically
// equivalent option-set already seen. Reworded labels count as a match;
// any option whose purpose materially changes breaks the loop. On
// transient LLM failure it conservatively reports no loop —
// the orchestrator's separate consecutive-press counter still guards
// against runaway repetition.
func DetectLoop(ctx context.Context, client llm.Client, model string, current domain.Menu, previousMenus []domain.Menu) LoopDetectionVerdict {
	if len(previousMenus) == 0 {
		return LoopDetectionVerdict{IsLoop: false, Confidence: 0, Reason: "no previous menus to compare"}
	}
	req := llm.Request{
		System:      loopDetectionSystemPrompt,
		User:        renderLoopPrompt(current, previousMenus),
		SchemaName:  "loop_detection",
		Schema:      loopDetectionSchema(),
		Model:       model,
		Temperature: 0.1,
		MaxTokens:   200,
	}
	obj, err := client.Analyze(ctx, req)
	if err != nil {
		return LoopDetectionVerdict{IsLoop: false, Confidence: 0, Reason: "llm failure: " + err.Error()}
	}
	return LoopDetectionVerdict{
		IsLoop:     asBool(obj, "is_loop"),
		Confidence: clampConfidence(asFloat(obj, "confidence")),
		Reason:     asString(obj, "reason"),
	}
}

func renderLoopPrompt(current domain.Menu, previousMenus []domain.Menu) string {
	var b strings.Builder
	b.WriteString("Current menu:\n")
	writeMenuJSON(&b, current)
	b.WriteString("\nPreviously seen menus, in order:\n")
	for i, m := range previousMenus {
		b.WriteString("menu ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(":\n")
		writeMenuJSON(&b, m)
		b.WriteString("\n")
	}
	return b.String()
}

func writeMenuJSON(b *strings.Builder, m domain.Menu) {
	raw, _ := json.Marshal(m)
	b.Write(raw)
}

const loopDetectionSystemPrompt = `You are comparing an IVR menu against menus already seen earlier in the
same call. is_loop=true means the current menu offers the same set of
choices as a previous one, even if the wording was changed (reworded
labels still count as a match). If any option's underlying purpose
materially changed (e.g. it now leads somewhere new), the menus are NOT a
loop. Respond only with the required JSON fields.`
