package flows

import "github.com/parley-ai/parley/session"

// Request and response payloads for each flow. []byte fields marshal as
// base64 strings in JSON.

type CreateChatRequest struct {
	Instructions string                   `json:"instructions,omitempty"`
	Config       session.GenerationConfig `json:"config,omitempty"`
}

type CreateChatResponse struct {
	ChatID string `json:"chatId"`
}

type SendMessageRequest struct {
	ChatID       string                   `json:"chatId"`
	Messages     []string                 `json:"messages"`
	Instructions string                   `json:"instructions,omitempty"`
	Config       session.GenerationConfig `json:"config,omitempty"`

	// RetrieveContext, when non-empty, queries the document index and
	// feeds the matches to the model as supporting context.
	RetrieveContext string `json:"retrieveContext,omitempty"`

	// GenerateAudio requests speech synthesis of the reply text.
	GenerateAudio bool   `json:"generateAudio,omitempty"`
	VoiceID       string `json:"voiceId,omitempty"`
	ModelID       string `json:"modelId,omitempty"`
}

type SendMessageResponse struct {
	TextResponse     string `json:"textResponse"`
	AudioResponse    []byte `json:"base64Audio,omitempty"`
	AudioContentType string `json:"audioContentType,omitempty"`

	// AudioError is set when the reply was generated but synthesis
	// failed; the text result is still valid.
	AudioError string `json:"audioError,omitempty"`
}

type SendSpeechMessageRequest struct {
	ChatID       string                   `json:"chatId"`
	Audio        []byte                   `json:"base64Audio"`
	ContentType  string                   `json:"contentType,omitempty"`
	Instructions string                   `json:"instructions,omitempty"`
	Config       session.GenerationConfig `json:"config,omitempty"`

	GenerateAudio bool   `json:"generateAudio,omitempty"`
	VoiceID       string `json:"voiceId,omitempty"`
	ModelID       string `json:"modelId,omitempty"`
}

type SendSpeechMessageResponse struct {
	SendMessageResponse
	TranscribedText string `json:"transcribedText"`
}

type TranscribeRequest struct {
	Audio       []byte `json:"base64Audio"`
	ContentType string `json:"contentType,omitempty"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SynthesizeRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId,omitempty"`
	ModelID string `json:"modelId,omitempty"`
}

type SynthesizeResponse struct {
	Audio       []byte `json:"base64Audio"`
	ContentType string `json:"contentType"`
}

// ExtractPDFRequest names exactly one source: inline bytes or a URL.
type ExtractPDFRequest struct {
	Data []byte `json:"base64Pdf,omitempty"`
	URL  string `json:"url,omitempty"`
}

type ExtractPDFResponse struct {
	Text string `json:"text"`
}

type IndexPDFRequest struct {
	Data     []byte         `json:"base64Pdf,omitempty"`
	URL      string         `json:"url,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type IndexPDFResponse struct {
	Chunks int `json:"chunks"`
}
