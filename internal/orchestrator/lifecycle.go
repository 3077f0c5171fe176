package orchestrator

import (
	"strings"

	"github.com/ivrline/callnav/internal/config"
	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/telephony"
)

// CallStartInput is the call-start webhook's payload.
type CallStartInput struct {
	CallID          string
	To              string
	From            string
	Overrides       config.Overrides
	SpeechActionURL string
}

// HandleCallStart initializes state and writes the initial call-history
// row.
func (o *Orchestrator) HandleCallStart(in CallStartInput) *telephony.Response {
	if strings.TrimSpace(in.CallID) == "" {
		return telephony.NewApologyResponse()
	}
	cfg := o.resolver.Resolve(in.Overrides, domain.CallConfig{}, o.persisted)
	o.store.GetOrCreate(in.CallID, cfg)
	o.history.StartCall(in.CallID, in.To, in.From, cfg.CallPurpose)
	return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
}

// DigitTurnInput is the digit-turn webhook's payload.
type DigitTurnInput struct {
	CallID          string
	Digits          string
	SpeechActionURL string
}

func (o *Orchestrator) HandleDigitTurn(in DigitTurnInput) *telephony.Response {
	if in.CallID == "" {
		return telephony.NewApologyResponse()
	}
	o.history.AddDigit(in.CallID, in.Digits, nil)
	return telephony.NewGatherResponse(telephony.GatherOptions{ActionURL: in.SpeechActionURL})
}

// CallStatusInput is the call-status webhook's payload.
type CallStatusInput struct {
	CallID string
	Status string
}

func (o *Orchestrator) HandleCallStatus(in CallStatusInput) {
	if in.CallID == "" {
		return
	}
	o.history.EndCall(in.CallID, in.Status)
	o.store.Clear(in.CallID)
}

// TransferStatusInput is the transfer-status webhook's payload.
type TransferStatusInput struct {
	CallID    string
	Succeeded bool
}

// HandleTransferStatus: a successful transfer clears
// awaiting-human-confirmation, marks the call terminal, ends the history
// record and then clears the call's state entry. Because the entry is
// removed, the terminal mark does not outlive this call: a speech-turn
// for the same call-id arriving afterwards starts from fresh state and
// is not short-circuited. Status callbacks never read live state.
func (o *Orchestrator) HandleTransferStatus(in TransferStatusInput) {
	if in.CallID == "" {
		return
	}
	o.history.UpdateTransferSuccess(in.CallID, in.Succeeded)
	if in.Succeeded {
		o.store.Update(in.CallID, func(st *domain.CallState) {
			st.AwaitingHumanConfirmation = false
			st.Terminal = true
		})
		o.history.EndCall(in.CallID, "transferred")
		o.store.Clear(in.CallID)
	}
}
