package classifiers

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivrline/callnav/internal/domain"
	"github.com/ivrline/callnav/internal/dtmf"
	"github.com/ivrline/callnav/internal/platform/llm"
)

// Suite fans the call-turn classifiers out concurrently against a shared
// llm.Client, using errgroup plus a result mutex the way other concurrent
// fan-out steps in this codebase do.
type Suite struct {
	Client llm.Client
	Model  string
}

func NewSuite(client llm.Client, model string) *Suite {
	return &Suite{Client: client, Model: model}
}

// FirstPassResult bundles the three classifiers that can run the instant
// an utterance arrives, before anything about menu structure is known:
// termination, transfer-request, and menu detection.
type FirstPassResult struct {
	Termination    TerminationVerdict
	TransferWanted TransferRequestVerdict
	MenuDetection  MenuDetectionVerdict
}

// RunFirstPass runs termination detection, transfer-request detection, and
// menu detection concurrently and returns once all three have completed.
func (s *Suite) RunFirstPass(ctx context.Context, utterance, previousUtterance string, silenceMS int) (FirstPassResult, error) {
	var (
		mu     sync.Mutex
		result FirstPassResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v := DetectTermination(gctx, s.Client, s.Model, utterance, previousUtterance, silenceMS)
		mu.Lock()
		result.Termination = v
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		v := DetectTransferRequest(gctx, s.Client, s.Model, utterance)
		mu.Lock()
		result.TransferWanted = v
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		v := DetectMenu(gctx, s.Client, s.Model, utterance)
		mu.Lock()
		result.MenuDetection = v
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return FirstPassResult{}, err
	}
	return result, nil
}

// RunMenuExtraction is join 2: extracting the menu options
// out of an utterance already judged to be a menu.
func (s *Suite) RunMenuExtraction(ctx context.Context, utterance string) MenuExtractionVerdict {
	return ExtractMenu(ctx, s.Client, s.Model, utterance)
}

// LoopAndDTMFResult bundles join 3: loop
// detection and the DTMF chooser run concurrently once the merged menu
// for this turn is known.
type LoopAndDTMFResult struct {
	Loop LoopDetectionVerdict
	DTMF dtmf.Decision
}

// RunLoopAndDTMF runs loop detection (skipped, reporting no loop, when
// previousMenus is empty) alongside the stateless DTMF chooser.
func (s *Suite) RunLoopAndDTMF(ctx context.Context, mergedMenu domain.Menu, previousMenus []domain.Menu, in dtmf.Input) (LoopAndDTMFResult, error) {
	var (
		mu     sync.Mutex
		result LoopAndDTMFResult
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		v := DetectLoop(ctx, s.Client, s.Model, mergedMenu, previousMenus)
		mu.Lock()
		result.Loop = v
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		v := dtmf.Choose(in)
		mu.Lock()
		result.DTMF = v
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return LoopAndDTMFResult{}, err
	}
	return result, nil
}
