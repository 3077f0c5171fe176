package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/ivrline/callnav/internal/callstate"
	"github.com/ivrline/callnav/internal/classifiers"
	"github.com/ivrline/callnav/internal/config"
	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/historysink"
	"github.com/ivrline/callnav/internal/platform/llm"
	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/telephony"
	"github.com/ivrline/callnav/internal/voiceprocessor"
)

// Orchestrator is the Speech Orchestrator: the only stateful, I/O-performing
// collaborator in the turn pipeline.
type Orchestrator struct {
	log        *logger.Logger
	store      *callstate.Store
	resolver   *config.Resolver
	processor  *voiceprocessor.Processor
	history    historysink.Store
	llmClient  llm.Client
	originator telephony.Originator
	persisted  config.PersistedSettings
	agentModel string
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		log:        deps.Log,
		store:      deps.Store,
		resolver:   deps.Resolver,
		processor:  deps.Processor,
		history:    deps.History,
		llmClient:  deps.LLMClient,
		originator: deps.Originator,
		persisted:  deps.PersistedSettings,
		agentModel: deps.AgentModel,
	}
}

// handleTransferRequested asks the caller to confirm before transferring.
func (o *Orchestrator) handleTransferRequested(in TurnInput, cfg domain.CallConfig, st domain.CallState) *telephony.Response {
	if !st.HumanConfirmed {
		o.store.Update(in.CallID, func(s *domain.CallState) {
			s.AwaitingHumanConfirmation = true
			s.Config = cfg
		})
		return telephony.NewSayAndGatherResponse(
			"Am I speaking with a real person or is this the automated system?",
			cfg.TTSVoice, cfg.TTSLanguage, in.SpeechActionURL,
		)
	}

	o.history.AddTransfer(in.CallID, cfg.TransferDestination)
	return telephony.NewTransferResponse(telephony.DialOptions{
		Destination:    cfg.TransferDestination,
		StatusCallback: in.TransferStatusURL,
		AnswerOnMedia:  true,
		SayText:        "Hold on, please.",
		SayVoice:       cfg.TTSVoice,
		SayLanguage:    cfg.TTSLanguage,
	})
}

// handleHumanConfirmation completes a pending transfer confirmation.
// Returns nil when the confirmation classifier does not clear the 0.7
// confidence bar, so the caller falls through to the menu/conversational
// branches.
func (o *Orchestrator) handleHumanConfirmation(ctx context.Context, in TurnInput, cfg domain.CallConfig, utterance string) *telephony.Response {
	verdict := classifiers.DetectHumanConfirmation(ctx, o.llmClient, o.agentModel, utterance)
	if !verdict.IsHuman || verdict.Confidence <= 0.7 {
		return nil
	}

	o.store.Update(in.CallID, func(s *domain.CallState) {
		s.HumanConfirmed = true
	})
	o.history.AddTransfer(in.CallID, cfg.TransferDestination)
	return telephony.NewTransferResponse(telephony.DialOptions{
		Destination:    cfg.TransferDestination,
		StatusCallback: in.TransferStatusURL,
		AnswerOnMedia:  true,
		SayText:        "Hold on, please.",
		SayVoice:       cfg.TTSVoice,
		SayLanguage:    cfg.TTSLanguage,
	})
}

// handleMenu merges the turn's detected menu into call state and either
// presses the chosen digit or gathers.
func (o *Orchestrator) handleMenu(ctx context.Context, in TurnInput, cfg domain.CallConfig, st domain.CallState, decision domain.Decision) *telephony.Response {
	if !decision.MenuComplete {
		if len(decision.MenuOptions) > 0 && decision.DTMF.ShouldPress {
			o.pressDigit(ctx, in.CallID, decision)
			return telephony.NewDigitPressResponse(in.SpeechActionURL, 1)
		}
		o.store.Update(in.CallID, func(s *domain.CallState) {
			s.PartialMenuOptions = decision.MenuOptions
			s.AwaitingCompleteMenu = true
			s.Config = cfg
		})
		return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
	}

	o.store.Update(in.CallID, func(s *domain.CallState) {
		s.PreviousMenus = appendMenu(s.PreviousMenus, decision.MenuOptions)
		s.PartialMenuOptions = nil
		s.AwaitingCompleteMenu = false
		s.Config = cfg
	})
	o.history.AddMenu(in.CallID, decision.MenuOptions, true)

	if decision.ShouldPreventDTMF || !decision.DTMF.ShouldPress {
		return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
	}

	o.pressDigit(ctx, in.CallID, decision)
	return telephony.NewDigitPressResponse(in.SpeechActionURL, 1)
}

// pressDigit records the chosen digit in call state and history, then
// actually presses it on the live call via the Originator's mid-call
// signaling API. The carrier API call is best-effort: a failure is
// logged, never surfaced, since the turn's telephony response has
// already been decided.
func (o *Orchestrator) pressDigit(ctx context.Context, callID string, decision domain.Decision) {
	digit := decision.DTMF.Digit
	o.store.Update(callID, func(s *domain.CallState) {
		s.LastPressedDigit = digit
		s.LastMenuForDigit = decision.MenuOptions
		s.ConsecutivePresses = appendPress(s.ConsecutivePresses, digit)
	})
	o.history.AddDigit(callID, digit, decision.DTMF.MatchedOption)

	if o.originator == nil {
		return
	}
	if err := o.originator.SendDigits(ctx, callID, digit); err != nil {
		o.log.Warn("failed to send digits to carrier", "call_id", callID, "digit", digit, "error", err)
	}
}

// appendMenu bounds previous-menus at MaxPreviousMenus.
func appendMenu(menus []domain.Menu, m domain.Menu) []domain.Menu {
	out := append(menus, m)
	if len(out) > domain.MaxPreviousMenus {
		out = out[len(out)-domain.MaxPreviousMenus:]
	}
	return out
}

// appendPress extends the tail consecutive-press run, or starts a new one,
// bounded at MaxConsecutivePresses entries.
func appendPress(tallies []domain.DigitPressTally, digit string) []domain.DigitPressTally {
	if len(tallies) > 0 && tallies[len(tallies)-1].Digit == digit {
		tallies[len(tallies)-1].Count++
		return tallies
	}
	out := append(tallies, domain.DigitPressTally{Digit: digit, Count: 1})
	if len(out) > domain.MaxConsecutivePresses {
		out = out[len(out)-domain.MaxConsecutivePresses:]
	}
	return out
}

// appendConversation extends call state's in-memory conversation window,
// bounded at MaxConversationHistory entries. This is a short rolling
// window for the orchestrator's own use; historysink.Store holds the
// full, persisted call history.
func appendConversation(entries []domain.ConversationEntry, role domain.ConversationRole, text string, at time.Time) []domain.ConversationEntry {
	out := append(entries, domain.ConversationEntry{Role: role, Text: text, At: at})
	if len(out) > domain.MaxConversationHistory {
		out = out[len(out)-domain.MaxConversationHistory:]
	}
	return out
}

// handleConversational falls back to a short AI reply
// using the transfer-agent persona, or silence, always finished with a
// gather.
func (o *Orchestrator) handleConversational(ctx context.Context, in TurnInput, cfg domain.CallConfig, utterance string) *telephony.Response {
	reply := o.generateReply(ctx, cfg, utterance)
	at := time.Now()
	if strings.EqualFold(strings.TrimSpace(reply), "silent") {
		o.recordAgentTurn(in.CallID, "(silent)", at)
		return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
	}
	o.recordAgentTurn(in.CallID, reply, at)
	return telephony.NewGatherResponse(telephony.GatherOptions{
		ActionURL: in.SpeechActionURL,
		SayText:   reply,
		SayVoice:  cfg.TTSVoice,
	})
}

// recordAgentTurn writes an agent reply to both the persisted history sink
// and call state's bounded conversation-history window.
func (o *Orchestrator) recordAgentTurn(callID, text string, at time.Time) {
	o.store.Update(callID, func(st *domain.CallState) {
		st.ConversationHistory = appendConversation(st.ConversationHistory, domain.RoleAgent, text, at)
	})
	o.history.AddConversation(callID, string(domain.RoleAgent), text, at)
}

const conversationalAgentSystemPrompt = `You are a transfer agent navigating an automated phone system on behalf
of a caller whose goal is: %q. You prefer silence — only speak when the
far end is waiting on you for an answer it cannot get from a menu press.
If nothing needs to be said, reply with exactly the single word "silent".
Otherwise reply with one short, natural sentence.`

func (o *Orchestrator) generateReply(ctx context.Context, cfg domain.CallConfig, utterance string) string {
	req := llm.Request{
		System:      sprintfSystemPrompt(cfg.CallPurpose),
		User:        utterance,
		SchemaName:  "conversational_reply",
		Schema:      conversationalReplySchema(),
		Model:       o.agentModel,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   120,
	}
	obj, err := o.llmClient.Analyze(ctx, req)
	if err != nil {
		return "silent"
	}
	reply, _ := obj["reply"].(string)
	if strings.TrimSpace(reply) == "" {
		return "silent"
	}
	return reply
}

func sprintfSystemPrompt(purpose string) string {
	if purpose == "" {
		purpose = "reach a human representative"
	}
	return "You are a transfer agent navigating an automated phone system on behalf of a caller whose goal is: \"" + purpose + "\". " +
		"You prefer silence — only speak when the far end is waiting on you for an answer it cannot get from a menu press. " +
		"If nothing needs to be said, reply with exactly the single word \"silent\". Otherwise reply with one short, natural sentence."
}

func conversationalReplySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reply": map[string]any{"type": "string"},
		},
		"required":             []string{"reply"},
		"additionalProperties": false,
	}
}
