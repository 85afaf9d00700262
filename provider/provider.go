// Package provider defines the hosted-AI collaborator interfaces consumed
// by the chat executor and flows, together with their production
// implementations. Clients are constructed once at startup and shared
// across requests; implementations must be safe for concurrent use.
package provider

import (
	"context"
	"errors"

	"github.com/parley-ai/parley/core/protocol"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/session"
)

// Sentinel errors shared by provider implementations.
var (
	// ErrUnavailable indicates a transport or authentication failure
	// talking to the hosted provider.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrUnsupportedContentType indicates audio input in a format the
	// transcriber does not accept.
	ErrUnsupportedContentType = errors.New("unsupported audio content type")
)

// GenerateRequest carries the full model invocation context for one turn:
// the accumulated history, system instructions, generation parameters and
// optional supporting documents.
type GenerateRequest struct {
	History      []protocol.Turn
	Instructions string
	Config       session.GenerationConfig
	Documents    []retrieval.Document
}

// Generator produces a model reply conditioned on a conversation history.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Transcriber converts speech audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// Audio is synthesized speech output.
type Audio struct {
	Data        []byte
	ContentType string
}

// Synthesizer converts text to speech audio. Empty voiceID or modelID
// select the implementation's defaults.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, modelID string) (Audio, error)
}
