package platform

import "encoding/json"

// Output speech and card types.
const (
	SpeechTypePlainText = "PlainText"
	CardTypeLinkAccount = "LinkAccount"
)

// ResponseEnvelope is the body returned from a webhook call.
type ResponseEnvelope struct {
	Version           string          `json:"version"`
	SessionAttributes json.RawMessage `json:"sessionAttributes,omitempty"`
	Response          Response        `json:"response"`
}

// Response is what the device says and shows.
type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
}

// OutputSpeech is spoken text.
type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reprompt is spoken when the user does not answer.
type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// Card is shown in the companion app.
type Card struct {
	Type string `json:"type"`
}

// ResponseBuilder assembles a ResponseEnvelope.
type ResponseBuilder struct {
	resp  Response
	attrs json.RawMessage
}

// NewResponseBuilder returns an empty builder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// Speak sets the spoken text. Empty text leaves the response silent.
func (b *ResponseBuilder) Speak(text string) *ResponseBuilder {
	if text == "" {
		b.resp.OutputSpeech = nil
		return b
	}
	b.resp.OutputSpeech = &OutputSpeech{Type: SpeechTypePlainText, Text: text}
	return b
}

// Reprompt sets the reprompt text and keeps the session open.
func (b *ResponseBuilder) Reprompt(text string) *ResponseBuilder {
	if text == "" {
		return b
	}
	b.resp.Reprompt = &Reprompt{OutputSpeech: OutputSpeech{Type: SpeechTypePlainText, Text: text}}
	return b.WithShouldEndSession(false)
}

// WithLinkAccountCard asks the user to link their calendar account in the
// companion app.
func (b *ResponseBuilder) WithLinkAccountCard() *ResponseBuilder {
	b.resp.Card = &Card{Type: CardTypeLinkAccount}
	return b
}

// WithShouldEndSession sets whether the session ends after this response.
func (b *ResponseBuilder) WithShouldEndSession(end bool) *ResponseBuilder {
	b.resp.ShouldEndSession = &end
	return b
}

// WithSessionAttributes sets the encoded session state carried to the next turn.
func (b *ResponseBuilder) WithSessionAttributes(attrs json.RawMessage) *ResponseBuilder {
	b.attrs = attrs
	return b
}

// Build returns the finished envelope.
func (b *ResponseBuilder) Build() *ResponseEnvelope {
	return &ResponseEnvelope{
		Version:           EnvelopeVersion,
		SessionAttributes: b.attrs,
		Response:          b.resp,
	}
}
