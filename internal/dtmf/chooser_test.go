package dtmf

import (
	"testing"

	"github.com/ivrline/callnav/internal/domain"
)

func TestChoose_NoOptionsDeclines(t *testing.T) {
	d := Choose(Input{Utterance: "um", Options: nil, CallPurpose: "sales"})
	if d.ShouldPress {
		t.Fatalf("expected no press with empty options, got %+v", d)
	}
}

func TestChoose_ExactLabelMatch(t *testing.T) {
	opts := domain.Menu{
		{Digit: "1", Label: "sales"},
		{Digit: "2", Label: "support"},
	}
	d := Choose(Input{Utterance: "press 1 for sales, press 2 for support", Options: opts, CallPurpose: "sales"})
	if !d.ShouldPress || d.Digit != "1" {
		t.Fatalf("expected press 1, got %+v", d)
	}
}

func TestChoose_RepresentativeSynonym(t *testing.T) {
	opts := domain.Menu{
		{Digit: "0", Label: "speak with a representative"},
		{Digit: "1", Label: "sales"},
	}
	d := Choose(Input{Utterance: "press 0 for a representative, press 1 for sales", Options: opts, CallPurpose: "speak with a representative"})
	if !d.ShouldPress || d.Digit != "0" {
		t.Fatalf("expected press 0 for representative option, got %+v", d)
	}
}

func TestChoose_PhoneNumberPurposeDeclines(t *testing.T) {
	opts := domain.Menu{{Digit: "1", Label: "enter account number"}}
	d := Choose(Input{
		Utterance:   "please enter your 10 digit phone number followed by the pound sign",
		Options:     opts,
		CallPurpose: "provide a callback phone number",
	})
	if d.ShouldPress {
		t.Fatalf("expected no press when purpose wants digits spoken, got %+v", d)
	}
}

func TestChoose_ContinuationYesNo(t *testing.T) {
	opts := domain.Menu{
		{Digit: "1", Label: "yes"},
		{Digit: "2", Label: "no"},
	}
	d := Choose(Input{
		Utterance:   "press 1 for yes, press 2 for no",
		Options:     opts,
		CallPurpose: "schedule an appointment",
	})
	if !d.ShouldPress || d.Digit != "1" {
		t.Fatalf("expected press 1 (yes) by default, got %+v", d)
	}
}

func TestChoose_CatchAllFallback(t *testing.T) {
	opts := domain.Menu{
		{Digit: "2", Label: "financial estimate"},
		{Digit: "3", Label: "prior authorization"},
		{Digit: "4", Label: "insurance company"},
		{Digit: "5", Label: "all other inquiries"},
	}
	d := Choose(Input{Utterance: "menu", Options: opts, CallPurpose: "check order status"})
	if !d.ShouldPress || d.Digit != "5" {
		t.Fatalf("expected catch-all press 5, got %+v", d)
	}
}

func TestChoose_DeclinesWithNoMatch(t *testing.T) {
	opts := domain.Menu{
		{Digit: "2", Label: "financial estimate"},
		{Digit: "3", Label: "prior authorization"},
	}
	d := Choose(Input{Utterance: "menu", Options: opts, CallPurpose: "check order status"})
	if d.ShouldPress {
		t.Fatalf("expected decline with no matching option, got %+v", d)
	}
}
