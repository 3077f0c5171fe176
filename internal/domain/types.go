// Package domain holds the plain data types shared by every IVR
// navigation component: call configuration, per-call state, and the
// transient per-turn decision record.
package domain

import "time"

// MenuOption is a single IVR menu entry, e.g. "press 1 for sales".
type MenuOption struct {
	Digit string `json:"digit"`
	Label string `json:"label"`
}

// Key returns the (digit,label) identity used for set/union operations
// over menu options.
func (m MenuOption) Key() string { return m.Digit + "|" + m.Label }

// Menu is an ordered, deduplicated collection of options. Order of first
// appearance is significant for loop detection and for union semantics.
type Menu []MenuOption

// Contains reports whether the menu already has an option with this key.
func (m Menu) Contains(opt MenuOption) bool {
	for _, o := range m {
		if o.Key() == opt.Key() {
			return true
		}
	}
	return false
}

// MergeMenus returns a ∪ b with order-of-first-appearance, first-wins on
// duplicate keys.
func MergeMenus(a, b Menu) Menu {
	out := make(Menu, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, opt := range a {
		if !seen[opt.Key()] {
			seen[opt.Key()] = true
			out = append(out, opt)
		}
	}
	for _, opt := range b {
		if !seen[opt.Key()] {
			seen[opt.Key()] = true
			out = append(out, opt)
		}
	}
	return out
}

// CallConfig is the resolved, immutable-within-a-turn call configuration.
type CallConfig struct {
	TransferDestination string // E.164
	CallPurpose         string
	CustomInstructions  string
	UserContactPhone    string
	UserContactEmail    string

	TTSVoice    string
	TTSLanguage string

	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
}

// ConversationRole tags a conversation-history entry.
type ConversationRole string

const (
	RoleCaller ConversationRole = "caller"
	RoleAgent  ConversationRole = "agent"
	RoleSystem ConversationRole = "system"
)

// ConversationEntry is one bounded conversation-history row.
type ConversationEntry struct {
	Role ConversationRole
	Text string
	At   time.Time
}

// DigitPressTally tracks a run of identical consecutive digit presses.
type DigitPressTally struct {
	Digit string
	Count int
}

// TerminationReason is the closed, tagged enum for why a call ended.
type TerminationReason string

const (
	TerminationNone      TerminationReason = "none"
	TerminationVoicemail TerminationReason = "voicemail"
	TerminationClosed    TerminationReason = "closed"
	TerminationDeadEnd   TerminationReason = "dead_end"
)

// CallState is the mutable, per-call state owned exclusively by the Call
// State Store. Callers only ever see snapshots or mutate it
// through the store's guarded update path.
type CallState struct {
	CallID    string
	CreatedAt time.Time

	PreviousMenus       []Menu
	PartialMenuOptions  Menu
	AwaitingCompleteMenu bool

	LastSpeech               string
	AwaitingCompleteSpeech   bool
	IncompleteSpeechWaitCount int

	LastPressedDigit  string
	LastMenuForDigit  Menu
	ConsecutivePresses []DigitPressTally

	AwaitingHumanConfirmation bool
	HumanConfirmed            bool

	ConversationHistory []ConversationEntry

	// Terminal marks that this call has reached a termination event or a
	// completed transfer; no further menu/transfer branch may run for it.
	Terminal bool

	Config CallConfig
}

// Decision is the transient, per-turn output of the Voice Processor.
// It performs no I/O and owns no state.
type Decision struct {
	IsMenu      bool
	MenuOptions Menu
	MenuComplete bool

	LoopDetected   bool
	LoopConfidence float64

	ShouldTerminate   bool
	TerminationReason TerminationReason
	TerminationMessage string

	TransferRequested bool

	DTMF DTMFDecision

	ShouldPreventDTMF bool
}

// DTMFDecision is the DTMF Chooser's verdict.
type DTMFDecision struct {
	ShouldPress   bool
	Digit         string
	MatchedOption *MenuOption
	Reason        string
}

const (
	// MaxIncompleteSpeechWaits bounds incomplete-speech fragment merges
	// per call.
	MaxIncompleteSpeechWaits = 2
	// MaxConversationHistory bounds conversation-history length.
	MaxConversationHistory = 20
	// MaxConsecutivePresses bounds the consecutive-press tally length.
	MaxConsecutivePresses = 5
	// MaxPreviousMenus bounds previous-menus per call.
	MaxPreviousMenus = 50
)
