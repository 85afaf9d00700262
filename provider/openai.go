package provider

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/parley-ai/parley/retrieval"
)

const (
	defaultChatModel       = openai.GPT4oMini
	defaultTranscribeModel = openai.Whisper1
)

// audioExtensions maps accepted audio content types to the file extension
// the transcription API infers the format from.
var audioExtensions = map[string]string{
	"audio/mp3":  "mp3",
	"audio/mpeg": "mp3",
	"audio/wav":  "wav",
	"audio/wave": "wav",
	"audio/ogg":  "ogg",
	"audio/webm": "webm",
	"audio/mp4":  "m4a",
	"audio/m4a":  "m4a",
	"audio/flac": "flac",
}

// OpenAI implements Generator and Transcriber against the OpenAI API.
type OpenAI struct {
	client          *openai.Client
	chatModel       string
	transcribeModel string
}

// OpenAIConfig holds OpenAI client settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	// ChatModel is the completion model (default gpt-4o-mini).
	ChatModel string `mapstructure:"chat_model"`
	// TranscribeModel is the speech-to-text model (default whisper-1).
	TranscribeModel string `mapstructure:"transcribe_model"`
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	p := &OpenAI{
		client:          openai.NewClientWithConfig(clientCfg),
		chatModel:       cfg.ChatModel,
		transcribeModel: cfg.TranscribeModel,
	}
	if p.chatModel == "" {
		p.chatModel = defaultChatModel
	}
	if p.transcribeModel == "" {
		p.transcribeModel = defaultTranscribeModel
	}
	return p, nil
}

// Generate runs a chat completion over the accumulated history. Supporting
// documents are rendered into an additional system message ahead of the
// history.
func (p *OpenAI) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)

	if req.Instructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.Instructions,
		})
	}
	if len(req.Documents) > 0 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: renderDocuments(req.Documents),
		})
	}
	for _, turn := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Messages:    messages,
		MaxTokens:   req.Config.MaxOutputTokens,
		Temperature: float32(req.Config.Temperature),
		Stop:        req.Config.StopSequences,
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts speech audio to text using the transcription API.
func (p *OpenAI) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "audio/mp3"
	}

	ext, ok := audioExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio." + ext,
	})
	if err != nil {
		return "", fmt.Errorf("%w: transcription: %v", ErrUnavailable, err)
	}

	return resp.Text, nil
}

func renderDocuments(docs []retrieval.Document) string {
	var b strings.Builder
	b.WriteString("Use the following context documents when answering.")
	for i, d := range docs {
		fmt.Fprintf(&b, "\n\n[Document %d", i+1)
		if url, ok := d.Metadata["url"].(string); ok && url != "" {
			fmt.Fprintf(&b, ", source: %s", url)
		}
		b.WriteString("]\n")
		b.WriteString(d.Content)
	}
	return b.String()
}
