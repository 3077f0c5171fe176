/*
Package voiceprocessor implements the Voice Processor: a pure async
function that turns one call-turn's context into a structured Decision,
with no state mutation and no telephony I/O. It is the testable core of
the system.
*/
package voiceprocessor

import (
	"context"

	"github.com/ivrline/callnav/internal/classifiers"
	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/dtmf"
)

// Context is everything process needs for one turn.
type Context struct {
	Utterance         string
	PreviousUtterance string
	SilenceMS         int

	PreviousMenus      []domain.Menu
	PartialMenuOptions domain.Menu

	LastPressedDigit   string
	LastMenuForDigit   domain.Menu
	ConsecutivePresses []domain.DigitPressTally

	Config domain.CallConfig
}

// Processor wraps the classifier suite used to resolve one turn.
type Processor struct {
	Suite *classifiers.Suite
}

func New(suite *classifiers.Suite) *Processor {
	return &Processor{Suite: suite}
}

// Process is the pure `process(context) → decision` function. It performs no state mutation; all I/O is classifier/LLM calls
// issued through p.Suite.
func (p *Processor) Process(ctx context.Context, in Context) (domain.Decision, error) {
	// Step 1: fan out termination, transfer-request, and menu detection;
	// await all three.
	first, err := p.Suite.RunFirstPass(ctx, in.Utterance, in.PreviousUtterance, in.SilenceMS)
	if err != nil {
		return domain.Decision{}, err
	}

	decision := domain.Decision{
		IsMenu:             first.MenuDetection.IsMenu,
		ShouldTerminate:    first.Termination.ShouldTerminate,
		TerminationReason:  first.Termination.Reason,
		TerminationMessage: first.Termination.Message,
		TransferRequested:  first.TransferWanted.WantsTransfer,
	}

	if !decision.IsMenu {
		return decision, nil
	}

	// Step 2a: extract menu options and merge with the partial buffer
	// (union keyed by (digit,label), first-wins).
	extraction := p.Suite.RunMenuExtraction(ctx, in.Utterance)
	merged := domain.MergeMenus(in.PartialMenuOptions, extraction.Options)

	decision.MenuOptions = merged
	decision.MenuComplete = extraction.Complete

	// Step 2b: fan out loop detection and the DTMF chooser concurrently.
	dtmfInput := dtmf.Input{
		Utterance:          in.Utterance,
		Options:            merged,
		CallPurpose:        in.Config.CallPurpose,
		CustomInstructions: in.Config.CustomInstructions,
	}
	loopAndDTMF, err := p.Suite.RunLoopAndDTMF(ctx, merged, in.PreviousMenus, dtmfInput)
	if err != nil {
		return domain.Decision{}, err
	}

	decision.LoopDetected = loopAndDTMF.Loop.IsLoop
	decision.LoopConfidence = loopAndDTMF.Loop.Confidence
	decision.DTMF = domain.DTMFDecision{
		ShouldPress:   loopAndDTMF.DTMF.ShouldPress,
		Digit:         loopAndDTMF.DTMF.Digit,
		MatchedOption: loopAndDTMF.DTMF.MatchedOption,
		Reason:        loopAndDTMF.DTMF.Reason,
	}

	// Step 2c: compute should-prevent-dtmf.
	decision.ShouldPreventDTMF = computeShouldPreventDTMF(decision, in)

	// Step 2d: suppression wins over the chooser's opinion.
	if decision.ShouldPreventDTMF {
		decision.DTMF.ShouldPress = false
	}

	return decision, nil
}

func computeShouldPreventDTMF(decision domain.Decision, in Context) bool {
	if decision.LoopConfidence > 0.7 && in.LastPressedDigit != "" {
		return true
	}
	if run := lastConsecutiveRun(in.ConsecutivePresses); run.Digit == in.LastPressedDigit && run.Count >= 3 {
		return true
	}
	return false
}

func lastConsecutiveRun(tallies []domain.DigitPressTally) domain.DigitPressTally {
	if len(tallies) == 0 {
		return domain.DigitPressTally{}
	}
	return tallies[len(tallies)-1]
}
