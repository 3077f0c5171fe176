package config

import (
	"testing"

	"github.com/ivrline/callnav/internal/domain"
)

func TestResolve_OverrideWinsOverEverything(t *testing.T) {
	r := &Resolver{defaultCallPurpose: "default purpose"}
	out := r.Resolve(
		Overrides{CallPurpose: "override purpose"},
		domain.CallConfig{CallPurpose: "call-state purpose"},
		PersistedSettings{CallPurpose: "persisted purpose"},
	)
	if out.CallPurpose != "override purpose" {
		t.Fatalf("expected override to win, got %q", out.CallPurpose)
	}
}

func TestResolve_FallsThroughToEnvironmentDefault(t *testing.T) {
	r := &Resolver{defaultCallPurpose: "env default purpose"}
	out := r.Resolve(Overrides{}, domain.CallConfig{}, PersistedSettings{})
	if out.CallPurpose != "env default purpose" {
		t.Fatalf("expected environment default, got %q", out.CallPurpose)
	}
}

func TestResolve_CallStateBeatsPersisted(t *testing.T) {
	r := &Resolver{}
	out := r.Resolve(
		Overrides{},
		domain.CallConfig{TransferDestination: "+15551230000"},
		PersistedSettings{TransferDestination: "+15559990000"},
	)
	if out.TransferDestination != "+15551230000" {
		t.Fatalf("expected call-state layer to win over persisted, got %q", out.TransferDestination)
	}
}

func TestLoadPersistedSettings_MissingFileIsNotFatal(t *testing.T) {
	got := LoadPersistedSettings("/nonexistent/path/settings.yaml", nil)
	if got != (PersistedSettings{}) {
		t.Fatalf("expected zero-value settings for missing file, got %+v", got)
	}
}
