package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	// DefaultVoiceID is the voice used when the caller does not pick one.
	DefaultVoiceID = "cgSgspJ2msm6clMCkdW9"
	// DefaultSynthesisModel is the speech model used by default.
	DefaultSynthesisModel = "eleven_turbo_v2"

	synthesisOutputFormat = "mp3_44100_128"
	synthesisContentType  = "audio/mpeg"
)

// ElevenLabs implements Synthesizer against the ElevenLabs text-to-speech
// API.
type ElevenLabs struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// ElevenLabsConfig holds ElevenLabs client settings.
type ElevenLabsConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// NewElevenLabs creates an ElevenLabs synthesizer.
func NewElevenLabs(cfg ElevenLabsConfig) (*ElevenLabs, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("elevenlabs api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	return &ElevenLabs{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type synthesisRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize converts text to MP3 speech audio.
func (p *ElevenLabs) Synthesize(ctx context.Context, text, voiceID, modelID string) (Audio, error) {
	if voiceID == "" {
		voiceID = DefaultVoiceID
	}
	if modelID == "" {
		modelID = DefaultSynthesisModel
	}

	body, err := json.Marshal(synthesisRequest{Text: text, ModelID: modelID})
	if err != nil {
		return Audio{}, fmt.Errorf("marshal synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		p.baseURL, url.PathEscape(voiceID), synthesisOutputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Audio{}, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: synthesis: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Audio{}, fmt.Errorf("%w: synthesis: status %d: %s", ErrUnavailable, resp.StatusCode, detail)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: synthesis: read body: %v", ErrUnavailable, err)
	}

	return Audio{Data: data, ContentType: synthesisContentType}, nil
}
