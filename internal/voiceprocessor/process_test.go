package voiceprocessor

import (
	"context"
	"fmt"
	"testing"

	"github.com/ivrline/callnav/internal/classifiers"
	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/platform/llm"
)

// scriptedClient answers each Analyze call by matching req.SchemaName
// against a canned verdict, the way a hand-rolled fake stands in for the
// teacher's openai.Client in handler tests.
type scriptedClient struct {
	verdicts map[string]map[string]any
}

func (c *scriptedClient) Analyze(_ context.Context, req llm.Request) (map[string]any, error) {
	v, ok := c.verdicts[req.SchemaName]
	if !ok {
		return nil, fmt.Errorf("scriptedClient: no verdict scripted for schema %q", req.SchemaName)
	}
	return v, nil
}

func newNonMenuClient() *scriptedClient {
	return &scriptedClient{verdicts: map[string]map[string]any{
		"termination_detection": {"should_terminate": false, "reason": "none", "confidence": 0.9, "message": ""},
		"transfer_request":      {"wants_transfer": false, "confidence": 0.9, "reason": "no transfer cue"},
		"menu_detection":        {"is_menu": false, "confidence": 0.9, "reason": "ordinary speech"},
	}}
}

func TestProcess_NonMenuUtteranceSkipsMenuWork(t *testing.T) {
	client := newNonMenuClient()
	suite := classifiers.NewSuite(client, "test-model")
	p := New(suite)

	decision, err := p.Process(context.Background(), Context{Utterance: "Thanks for calling, how can I help you today?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.IsMenu {
		t.Fatalf("expected IsMenu=false, got %+v", decision)
	}
	if decision.ShouldTerminate || decision.TransferRequested {
		t.Fatalf("expected no terminate/transfer, got %+v", decision)
	}
	if len(decision.MenuOptions) != 0 {
		t.Fatalf("expected no menu options extracted for non-menu utterance, got %v", decision.MenuOptions)
	}
}

func TestProcess_MenuMergesWithPartialOptions(t *testing.T) {
	client := &scriptedClient{verdicts: map[string]map[string]any{
		"termination_detection": {"should_terminate": false, "reason": "none", "confidence": 0.9, "message": ""},
		"transfer_request":      {"wants_transfer": false, "confidence": 0.9, "reason": "no transfer cue"},
		"menu_detection":        {"is_menu": true, "confidence": 0.95, "reason": "offers options"},
		"menu_extraction": {
			"options": []any{
				map[string]any{"digit": "2", "label": "support"},
			},
			"complete":   true,
			"confidence": 0.9,
			"reason":     "menu reads complete",
		},
		"loop_detection": {"is_loop": false, "confidence": 0.1, "reason": "no prior menus"},
	}}
	suite := classifiers.NewSuite(client, "test-model")
	p := New(suite)

	partial := domain.Menu{{Digit: "1", Label: "sales"}}
	decision, err := p.Process(context.Background(), Context{
		Utterance:          "support, press 3 for all other",
		PartialMenuOptions: partial,
		Config:             domain.CallConfig{CallPurpose: "support"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.IsMenu || !decision.MenuComplete {
		t.Fatalf("expected complete menu decision, got %+v", decision)
	}
	if len(decision.MenuOptions) != 2 {
		t.Fatalf("expected merged menu of 2 options, got %v", decision.MenuOptions)
	}
	if decision.MenuOptions[0].Digit != "1" || decision.MenuOptions[1].Digit != "2" {
		t.Fatalf("expected order-of-first-appearance {1,2}, got %v", decision.MenuOptions)
	}
}

func TestProcess_LoopSuppressesDTMFWhenPreviouslyPressed(t *testing.T) {
	client := &scriptedClient{verdicts: map[string]map[string]any{
		"termination_detection": {"should_terminate": false, "reason": "none", "confidence": 0.9, "message": ""},
		"transfer_request":      {"wants_transfer": false, "confidence": 0.9, "reason": "no transfer cue"},
		"menu_detection":        {"is_menu": true, "confidence": 0.95, "reason": "offers options"},
		"menu_extraction": {
			"options": []any{
				map[string]any{"digit": "5", "label": "all other inquiries"},
			},
			"complete":   true,
			"confidence": 0.9,
			"reason":     "complete",
		},
		"loop_detection": {"is_loop": true, "confidence": 0.9, "reason": "same option set seen before"},
	}}
	suite := classifiers.NewSuite(client, "test-model")
	p := New(suite)

	decision, err := p.Process(context.Background(), Context{
		Utterance:        "press 5 for all other inquiries",
		PreviousMenus:    []domain.Menu{{{Digit: "5", Label: "all other inquiries"}}},
		LastPressedDigit: "5",
		Config:           domain.CallConfig{CallPurpose: "check order status"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.ShouldPreventDTMF {
		t.Fatalf("expected ShouldPreventDTMF=true on repeat loop, got %+v", decision)
	}
	if decision.DTMF.ShouldPress {
		t.Fatalf("expected suppression to force ShouldPress=false, got %+v", decision.DTMF)
	}
}

func TestProcess_ConsecutivePressRunSuppressesDTMF(t *testing.T) {
	client := &scriptedClient{verdicts: map[string]map[string]any{
		"termination_detection": {"should_terminate": false, "reason": "none", "confidence": 0.9, "message": ""},
		"transfer_request":      {"wants_transfer": false, "confidence": 0.9, "reason": "no transfer cue"},
		"menu_detection":        {"is_menu": true, "confidence": 0.95, "reason": "offers options"},
		"menu_extraction": {
			"options":    []any{map[string]any{"digit": "5", "label": "all other inquiries"}},
			"complete":   true,
			"confidence": 0.9,
			"reason":     "complete",
		},
		"loop_detection": {"is_loop": false, "confidence": 0.1, "reason": "no loop this time"},
	}}
	suite := classifiers.NewSuite(client, "test-model")
	p := New(suite)

	decision, err := p.Process(context.Background(), Context{
		Utterance:          "press 5 for all other inquiries",
		LastPressedDigit:   "5",
		ConsecutivePresses: []domain.DigitPressTally{{Digit: "5", Count: 3}},
		Config:             domain.CallConfig{CallPurpose: "check order status"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.ShouldPreventDTMF {
		t.Fatalf("expected ShouldPreventDTMF=true on 3-run repeat, got %+v", decision)
	}
}
