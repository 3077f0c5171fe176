/*
Package orchestrator implements the Speech Orchestrator: the only
component that mutates call state, writes history, or emits telephony
responses. Every step below may early-return a telephony
response; none of them throw — the webhook surface only ever sees a
*telephony.Response, never an exception.
*/
package orchestrator

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/ivrline/callnav/internal/callstate"
	"github.com/ivrline/callnav/internal/config"
	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/historysink"
	"github.com/ivrline/callnav/internal/platform/llm"
	"github.com/ivrline/callnav/internal/platform/logger"
	"github.com/ivrline/callnav/internal/telephony"
	"github.com/ivrline/callnav/internal/voiceprocessor"
)

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Log        *logger.Logger
	Store      *callstate.Store
	Resolver   *config.Resolver
	Processor  *voiceprocessor.Processor
	History    historysink.Store
	LLMClient  llm.Client
	Originator telephony.Originator

	AgentModel         string
	BaseURL            string
	PersistedSettings  config.PersistedSettings
}

// TurnInput is one telephony webhook's worth of input for a speech turn.
type TurnInput struct {
	CallID            string
	Utterance         string
	SilenceMS         int
	Overrides         config.Overrides
	SpeechActionURL   string
	TransferStatusURL string
}

var endsWithDanglingWord = regexp.MustCompile(`(?i)\b(and|for|to|or|the|a|an|press|select|choose|dial)\s*$`)
var terminalPunctuation = regexp.MustCompile(`[.!?]\s*$`)

// HandleSpeechTurn runs the full pipeline for one speech-turn webhook.
func (o *Orchestrator) HandleSpeechTurn(ctx context.Context, in TurnInput) *telephony.Response {
	if strings.TrimSpace(in.CallID) == "" {
		// Carrier malformed request: apologize, hang up, record nothing.
		return telephony.NewApologyResponse()
	}

	// Step 1: resolve config (per-turn override -> per-call state -> persisted -> env).
	snapshot := o.store.GetOrCreate(in.CallID, domain.CallConfig{})
	cfg := o.resolver.Resolve(in.Overrides, snapshot.Config, o.persisted)

	if snapshot.Terminal {
		// Once a call is terminal, never re-enter the menu/transfer branches.
		return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
	}

	utterance := strings.TrimSpace(in.Utterance)

	// Step 2: merge incomplete speech.
	if snapshot.AwaitingCompleteSpeech && snapshot.LastSpeech != "" {
		utterance = snapshot.LastSpeech + " " + utterance
	}

	// Step 3: cheap incomplete-speech heuristic, before any LLM call.
	if looksIncomplete(utterance) && snapshot.IncompleteSpeechWaitCount < domain.MaxIncompleteSpeechWaits {
		now := time.Now()
		updated := o.store.Update(in.CallID, func(st *domain.CallState) {
			st.LastSpeech = utterance
			st.AwaitingCompleteSpeech = true
			st.IncompleteSpeechWaitCount++
			st.Config = cfg
			st.ConversationHistory = appendConversation(st.ConversationHistory, domain.RoleCaller, utterance, now)
		})
		_ = updated
		o.history.AddConversation(in.CallID, string(domain.RoleCaller), utterance, now)
		return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
	}

	// Step 4: log caller utterance (fire-and-forget), clearing the
	// incomplete-speech flags since this utterance stands on its own.
	callerTurnAt := time.Now()
	o.store.Update(in.CallID, func(st *domain.CallState) {
		st.AwaitingCompleteSpeech = false
		st.Config = cfg
		st.ConversationHistory = appendConversation(st.ConversationHistory, domain.RoleCaller, utterance, callerTurnAt)
	})
	o.history.AddConversation(in.CallID, string(domain.RoleCaller), utterance, callerTurnAt)

	// Step 5: call Voice Processor.
	current := o.store.GetOrCreate(in.CallID, cfg)
	decision, err := o.processor.Process(ctx, voiceprocessor.Context{
		Utterance:          utterance,
		PreviousUtterance:  current.LastSpeech,
		SilenceMS:          in.SilenceMS,
		PreviousMenus:      current.PreviousMenus,
		PartialMenuOptions: current.PartialMenuOptions,
		LastPressedDigit:   current.LastPressedDigit,
		LastMenuForDigit:   current.LastMenuForDigit,
		ConsecutivePresses: current.ConsecutivePresses,
		Config:             cfg,
	})
	if err != nil {
		o.log.Warn("voice processor failed for turn, falling back to plain gather", "call_id", in.CallID, "error", err)
		return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
	}

	// Step 6: terminate.
	if decision.ShouldTerminate {
		o.history.AddTermination(in.CallID, string(decision.TerminationReason), decision.TerminationMessage)
		o.history.EndCall(in.CallID, "terminated")
		o.store.Update(in.CallID, func(st *domain.CallState) { st.Terminal = true })
		o.store.Clear(in.CallID)
		return telephony.NewTerminationResponse("Thank you. Goodbye.", cfg.TTSVoice, cfg.TTSLanguage)
	}

	// Step 7: transfer-requested branch.
	if decision.TransferRequested {
		return o.handleTransferRequested(in, cfg, current)
	}

	// Step 9 (human-confirmation) is independent of the menu branch, but
	// only applies once the caller was actually asked — i.e. when the
	// previous turn set AwaitingHumanConfirmation.
	if current.AwaitingHumanConfirmation && !current.HumanConfirmed {
		if resp := o.handleHumanConfirmation(ctx, in, cfg, utterance); resp != nil {
			return resp
		}
	}

	// Step 8: menu branch.
	if decision.IsMenu {
		return o.handleMenu(ctx, in, cfg, current, decision)
	}

	if current.AwaitingCompleteMenu {
		// Last turn looked like a menu but this one is not; clear the buffer.
		o.store.Update(in.CallID, func(st *domain.CallState) {
			st.AwaitingCompleteMenu = false
			st.PartialMenuOptions = nil
		})
	}

	// Step 10: conversational branch.
	return o.handleConversational(ctx, in, cfg, utterance)
}

func looksIncomplete(utterance string) bool {
	if utterance == "" {
		return false
	}
	words := strings.Fields(utterance)
	if len(words) >= 5 {
		return false
	}
	if terminalPunctuation.MatchString(utterance) {
		return false
	}
	return endsWithDanglingWord.MatchString(utterance)
}
