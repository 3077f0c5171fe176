/*
Package telephony renders the carrier's small declarative response
document and defines the Originator collaborator used to
start outbound calls, send mid-call touch-tones, and fetch call status.
No carrier SDK is used for this; the document is built with
encoding/xml directly rather than pull in a carrier-specific dependency.
*/
package telephony

import (
	"encoding/xml"
)

// Response is the carrier's declarative reply document:
// gather/say/pause/dial/redirect/hangup verbs, in emission order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// Gather listens for speech or digits and calls back with the result.
type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Input         string   `xml:"input,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Enhanced      bool     `xml:"enhanced,attr"`
	Say           *Say     `xml:"Say,omitempty"`
}

// Say speaks text in the given voice/language.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Pause waits the given number of seconds before the next verb.
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

// Dial starts a second call leg to Number and bridges it to the caller.
type Dial struct {
	XMLName       xml.Name `xml:"Dial"`
	Action        string   `xml:"action,attr,omitempty"`
	Timeout       int      `xml:"timeout,attr,omitempty"`
	AnswerOnMedia bool     `xml:"answerOnBridge,attr,omitempty"`
	Number        string   `xml:",chardata"`
}

// Redirect sends the carrier to a new webhook URL mid-call.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	URL     string   `xml:",chardata"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// GatherOptions configures a Gather verb. SpeechTimeout defaults to 15
// seconds — the max time to wait for speech to *start*; recording then
// runs until a 2-second intra-speech pause.
type GatherOptions struct {
	ActionURL     string
	Method        string
	SpeechTimeout string
	Enhanced      bool
	SayText       string
	SayVoice      string
	SayLanguage   string
}

// NewGatherResponse builds a bare "listen again" response: a single
// Gather verb, optionally with a Say nested inside it.
func NewGatherResponse(opts GatherOptions) *Response {
	g := Gather{
		Action:        opts.ActionURL,
		Method:        method(opts.Method),
		Input:         "speech dtmf",
		SpeechTimeout: speechTimeout(opts.SpeechTimeout),
		Enhanced:      opts.Enhanced,
	}
	if opts.SayText != "" {
		g.Say = &Say{Text: opts.SayText, Voice: opts.SayVoice, Language: opts.SayLanguage}
	}
	return &Response{Verbs: []any{g}}
}

// NewSayAndGatherResponse speaks text, then gathers — the common "ask and
// wait for the reply" shape used throughout the orchestrator.
func NewSayAndGatherResponse(text, voice, language, actionURL string) *Response {
	return &Response{Verbs: []any{
		Say{Text: text, Voice: voice, Language: language},
		Gather{Action: actionURL, Method: "POST", Input: "speech dtmf", SpeechTimeout: "15"},
	}}
}

// NewTerminationResponse speaks a closing line and hangs up.
func NewTerminationResponse(message, voice, language string) *Response {
	if message == "" {
		message = "Thank you. Goodbye."
	}
	return &Response{Verbs: []any{
		Say{Text: message, Voice: voice, Language: language},
		Hangup{},
	}}
}

// NewDigitPressResponse is the reply for a turn whose digit is sent
// through the carrier's mid-call API rather than a response verb; it
// plays no tone itself and emits only a short pause (to let the tone
// land) followed by a fresh gather.
func NewDigitPressResponse(actionURL string, pauseSeconds int) *Response {
	verbs := []any{}
	if pauseSeconds > 0 {
		verbs = append(verbs, Pause{Length: pauseSeconds})
	}
	verbs = append(verbs, Gather{Action: actionURL, Method: "POST", Input: "speech dtmf", SpeechTimeout: "15"})
	return &Response{Verbs: verbs}
}

// DialOptions configures a transfer Dial verb.
type DialOptions struct {
	Destination   string
	StatusCallback string
	Timeout       int
	AnswerOnMedia bool
	SayText       string
	SayVoice      string
	SayLanguage   string
}

// NewTransferResponse speaks a short line ("Hold on, please.") then dials
// the transfer destination with a distinct status-callback URL.
func NewTransferResponse(opts DialOptions) *Response {
	verbs := []any{}
	if opts.SayText != "" {
		verbs = append(verbs, Say{Text: opts.SayText, Voice: opts.SayVoice, Language: opts.SayLanguage})
	}
	verbs = append(verbs, Dial{
		Number:        opts.Destination,
		Action:        opts.StatusCallback,
		Timeout:       timeoutOrDefault(opts.Timeout),
		AnswerOnMedia: opts.AnswerOnMedia,
	})
	return &Response{Verbs: verbs}
}

// NewApologyResponse is the safe fallback used whenever a handler hits an
// unexpected error: a short apology followed by hangup, never a bare 5xx.
func NewApologyResponse() *Response {
	return &Response{Verbs: []any{
		Say{Text: "I'm sorry, something went wrong on this call. Goodbye."},
		Hangup{},
	}}
}

// MarshalXML flattens Verbs into the <Response> element's children.
func (r *Response) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "Response"}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, v := range r.Verbs {
		if err := e.Encode(v); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func method(m string) string {
	if m == "" {
		return "POST"
	}
	return m
}

func speechTimeout(s string) string {
	if s == "" {
		return "15"
	}
	return s
}

func timeoutOrDefault(t int) int {
	if t <= 0 {
		return 30
	}
	return t
}
