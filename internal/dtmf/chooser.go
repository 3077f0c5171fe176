// Package dtmf implements the stateless DTMF Chooser: given a menu and a
// call purpose, decide which touch-tone digit (if any) moves the call
// toward its goal. All loop suppression happens later, in the voice
// processor; this package only ever looks at the current turn.
package dtmf

import (
	"regexp"
	"strings"

	"github.com/ivrline/callnav/internal/domain"
)

// Input is everything the chooser needs for one turn.
type Input struct {
	Utterance          string
	Options            domain.Menu
	CallPurpose        string
	CustomInstructions string
}

// Decision is the chooser's verdict.
type Decision struct {
	ShouldPress   bool
	Digit         string
	MatchedOption *domain.MenuOption
	Reason        string
}

var representativeSynonyms = []string{
	"representative", "operator", "agent", "customer service", "customer-service", "support",
}

var phoneNumberPurpose = regexp.MustCompile(`(?i)\b(phone|call\s*back|callback)\s*number\b`)
var digitMenuPrompt = regexp.MustCompile(`(?i)\benter\b.*\b(digits|number)\b|\bplease\s+(enter|dial)\b`)

var speakWithRepPurpose = regexp.MustCompile(`(?i)speak\s+(with|to)\s+a\s+(representative|operator|agent|person)|talk\s+to\s+a\s+(representative|operator|agent|person)`)

var allOtherPattern = regexp.MustCompile(`(?i)\ball\s+other\b|\botherwise\b|\bother\s+(questions|inquiries)\b`)

var yesNoContinuation = regexp.MustCompile(`(?i)press\s*([0-9*#])\s*for\s*yes.*press\s*([0-9*#])\s*for\s*no`)

// Choose applies the priority-ordered rules from the decision table
// (rule 1: no options means no press, through rule 7: decline).
func Choose(in Input) Decision {
	// Rule 1: no options, likely a fragment.
	if len(in.Options) == 0 {
		return Decision{ShouldPress: false, Reason: "no options offered"}
	}

	purpose := strings.ToLower(strings.TrimSpace(in.CallPurpose))

	// Rule 2: exact semantic match between purpose and an option label.
	if opt, ok := exactLabelMatch(purpose, in.Options); ok {
		o := opt
		return Decision{ShouldPress: true, Digit: o.Digit, MatchedOption: &o, Reason: "option label matches call purpose"}
	}

	// Rule 3: "speak with a representative" (or synonyms) purpose.
	if speakWithRepPurpose.MatchString(purpose) || containsAny(purpose, representativeSynonyms) {
		if opt, ok := representativeMatch(in.Options); ok {
			o := opt
			return Decision{ShouldPress: true, Digit: o.Digit, MatchedOption: &o, Reason: "purpose wants a representative; option offers one"}
		}
	}

	// Rule 4: continuation question "press 1 for yes, 2 for no".
	if m := yesNoContinuation.FindStringSubmatch(in.Utterance); m != nil {
		digit := continuationDigitForGoal(m[1], m[2], purpose, in.CustomInstructions)
		if digit != "" {
			if opt, ok := findByDigit(in.Options, digit); ok {
				o := opt
				return Decision{ShouldPress: true, Digit: digit, MatchedOption: &o, Reason: "continuation question toward the goal"}
			}
			return Decision{ShouldPress: true, Digit: digit, Reason: "continuation question toward the goal"}
		}
	}

	// Rule 5: purpose asks for a phone number and the IVR is prompting for
	// digits to be entered (not a menu selection) — do not press; the
	// orchestrator will speak the number instead.
	if phoneNumberPurpose.MatchString(purpose) && digitMenuPrompt.MatchString(in.Utterance) {
		return Decision{ShouldPress: false, Reason: "purpose requests a phone number; orchestrator will speak digits instead of pressing"}
	}

	// Rule 6: generic "other / otherwise / all other" catch-all.
	if opt, ok := catchAllMatch(in.Options); ok {
		o := opt
		return Decision{ShouldPress: true, Digit: o.Digit, MatchedOption: &o, Reason: "no specific match; falling back to catch-all option"}
	}

	// Rule 7: decline.
	return Decision{ShouldPress: false, Reason: "no matching option for call purpose"}
}

func exactLabelMatch(purpose string, options domain.Menu) (domain.MenuOption, bool) {
	if purpose == "" {
		return domain.MenuOption{}, false
	}
	for _, opt := range options {
		label := strings.ToLower(strings.TrimSpace(opt.Label))
		if label == "" {
			continue
		}
		if label == purpose || strings.Contains(purpose, label) || strings.Contains(label, purpose) {
			return opt, true
		}
	}
	return domain.MenuOption{}, false
}

func representativeMatch(options domain.Menu) (domain.MenuOption, bool) {
	for _, opt := range options {
		label := strings.ToLower(opt.Label)
		if containsAny(label, representativeSynonyms) || allOtherPattern.MatchString(label) {
			return opt, true
		}
	}
	return domain.MenuOption{}, false
}

func catchAllMatch(options domain.Menu) (domain.MenuOption, bool) {
	for _, opt := range options {
		if allOtherPattern.MatchString(strings.ToLower(opt.Label)) {
			return opt, true
		}
	}
	return domain.MenuOption{}, false
}

func findByDigit(options domain.Menu, digit string) (domain.MenuOption, bool) {
	for _, opt := range options {
		if opt.Digit == digit {
			return opt, true
		}
	}
	return domain.MenuOption{}, false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// continuationDigitForGoal decides, for a "press X for yes, press Y for
// no" prompt, which digit continues toward the call purpose. Purposes
// phrased negatively ("do not want", "decline", "no thank you") favor the
// "no" digit; everything else favors "yes", since the agent's default
// posture is to keep moving forward.
func continuationDigitForGoal(yesDigit, noDigit, purpose, customInstructions string) string {
	combined := purpose + " " + strings.ToLower(customInstructions)
	if strings.Contains(combined, "decline") || strings.Contains(combined, "do not want") || strings.Contains(combined, "no thank") {
		return noDigit
	}
	return yesDigit
}
