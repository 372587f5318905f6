package twilio

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// DefaultVoice is the TTS voice used for every spoken utterance.
const DefaultVoice = "Polly.Joanna"

// GoodbyeUtterance is spoken when a Gather times out without input.
const GoodbyeUtterance = "Thank you for calling. Have a great day!"

// TwiML document structure. Twilio consumes this as Content-Type text/xml.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Enhanced      bool     `xml:"enhanced,attr"`
	SpeechModel   string   `xml:"speechModel,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr"`
	Timeout       int      `xml:"timeout,attr"`
	Say           Say
}

type Connect struct {
	XMLName xml.Name `xml:"Connect"`
	Stream  Stream
}

type Stream struct {
	XMLName xml.Name `xml:"Stream"`
	URL     string   `xml:"url,attr"`
}

// GatherSpeech renders the standard voice-handler response: speak the
// utterance inside a speech Gather that posts back to action, with a spoken
// goodbye fallback should the caller stay silent.
func GatherSpeech(utterance, action string) ([]byte, error) {
	doc := Response{
		Verbs: []any{
			Gather{
				Input:         "speech",
				Action:        action,
				Method:        "POST",
				Enhanced:      true,
				SpeechModel:   "phone_call",
				SpeechTimeout: "auto",
				Timeout:       10,
				Say:           Say{Voice: DefaultVoice, Text: utterance},
			},
			Say{Text: GoodbyeUtterance},
		},
	}
	return render(doc)
}

// ConnectStream renders the media-stream handoff TwiML: a short greeting,
// then a <Connect><Stream> pointing at the websocket bridge on host.
func ConnectStream(host string) ([]byte, error) {
	streamURL := url.URL{Scheme: "wss", Host: host, Path: "/media-stream"}
	doc := Response{
		Verbs: []any{
			Say{Text: "Hello! You are now connected to an AI assistant."},
			Pause{Length: 1},
			Say{Text: "Please wait while we establish the connection."},
			Connect{Stream: Stream{URL: streamURL.String()}},
		},
	}
	return render(doc)
}

func render(doc Response) ([]byte, error) {
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}

	var buf strings.Builder
	buf.WriteString(xml.Header)
	buf.Write(out)
	return []byte(buf.String()), nil
}
