package flows_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/chat"
	"github.com/parley-ai/parley/flows"
	"github.com/parley-ai/parley/observability"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/session"
)

type fakeGenerator struct {
	reply    string
	err      error
	requests []provider.GenerateRequest
}

func (g *fakeGenerator) Generate(ctx context.Context, req provider.GenerateRequest) (string, error) {
	g.requests = append(g.requests, req)
	return g.reply, g.err
}

type fakeTranscriber struct {
	text string
	err  error
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	return t.text, t.err
}

type fakeSynthesizer struct {
	audio provider.Audio
	err   error
	calls int
}

func (s *fakeSynthesizer) Synthesize(ctx context.Context, text, voiceID, modelID string) (provider.Audio, error) {
	s.calls++
	return s.audio, s.err
}

type fakeRetriever struct {
	docs    []retrieval.Document
	err     error
	queries []string
}

func (r *fakeRetriever) Retrieve(ctx context.Context, query string) ([]retrieval.Document, error) {
	r.queries = append(r.queries, query)
	return r.docs, r.err
}

type fakeIndexer struct {
	docs []retrieval.Document
	err  error
}

func (i *fakeIndexer) Index(ctx context.Context, docs []retrieval.Document) error {
	i.docs = append(i.docs, docs...)
	return i.err
}

func newFlows(t *testing.T, gen *fakeGenerator, opts ...flows.Option) *flows.Flows {
	t.Helper()
	return flows.New(session.NewMemoryStore(), gen, opts...)
}

func createChat(t *testing.T, f *flows.Flows) string {
	t.Helper()
	resp, err := f.CreateChat(context.Background(), flows.CreateChatRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ChatID)
	return resp.ChatID
}

func TestCreateSendDelete(t *testing.T) {
	gen := &fakeGenerator{reply: "hi there"}
	f := newFlows(t, gen)
	ctx := context.Background()

	id := createChat(t, f)

	resp, err := f.SendTextMessage(ctx, flows.SendMessageRequest{
		ChatID:   id,
		Messages: []string{"hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.TextResponse)
	assert.Empty(t, resp.AudioResponse)

	require.NoError(t, f.DeleteChat(ctx, id))

	_, err = f.SendTextMessage(ctx, flows.SendMessageRequest{
		ChatID:   id,
		Messages: []string{"still there?"},
	})
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestSendTextMessage_Validation(t *testing.T) {
	f := newFlows(t, &fakeGenerator{reply: "ok"})
	ctx := context.Background()

	tests := []struct {
		name string
		req  flows.SendMessageRequest
	}{
		{name: "missing chat id", req: flows.SendMessageRequest{Messages: []string{"hi"}}},
		{name: "no messages", req: flows.SendMessageRequest{ChatID: "some-id"}},
		{name: "empty message", req: flows.SendMessageRequest{ChatID: "some-id", Messages: []string{"hi", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.SendTextMessage(ctx, tt.req)
			assert.ErrorIs(t, err, flows.ErrInvalidInput)
		})
	}
}

func TestSendTextMessage_WithAudio(t *testing.T) {
	gen := &fakeGenerator{reply: "spoken reply"}
	synth := &fakeSynthesizer{audio: provider.Audio{Data: []byte{1, 2, 3}, ContentType: "audio/mpeg"}}
	f := newFlows(t, gen, flows.WithSynthesizer(synth))

	id := createChat(t, f)

	resp, err := f.SendTextMessage(context.Background(), flows.SendMessageRequest{
		ChatID:        id,
		Messages:      []string{"say something"},
		GenerateAudio: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "spoken reply", resp.TextResponse)
	assert.Equal(t, []byte{1, 2, 3}, resp.AudioResponse)
	assert.Equal(t, "audio/mpeg", resp.AudioContentType)
	assert.Empty(t, resp.AudioError)
}

func TestSendTextMessage_SynthesisFailureIsPartial(t *testing.T) {
	gen := &fakeGenerator{reply: "text survives"}
	synth := &fakeSynthesizer{err: errors.New("voice service down")}
	f := newFlows(t, gen, flows.WithSynthesizer(synth))

	id := createChat(t, f)

	resp, err := f.SendTextMessage(context.Background(), flows.SendMessageRequest{
		ChatID:        id,
		Messages:      []string{"say something"},
		GenerateAudio: true,
	})
	require.NoError(t, err, "synthesis failure must not fail the flow")
	assert.Equal(t, "text survives", resp.TextResponse)
	assert.Empty(t, resp.AudioResponse)
	assert.Contains(t, resp.AudioError, "voice service down")
}

func TestSendTextMessage_NoSynthesizerIsPartial(t *testing.T) {
	gen := &fakeGenerator{reply: "text only"}
	f := newFlows(t, gen)

	id := createChat(t, f)

	resp, err := f.SendTextMessage(context.Background(), flows.SendMessageRequest{
		ChatID:        id,
		Messages:      []string{"say something"},
		GenerateAudio: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "text only", resp.TextResponse)
	assert.NotEmpty(t, resp.AudioError)
}

func TestSendTextMessage_RetrieveContext(t *testing.T) {
	gen := &fakeGenerator{reply: "grounded reply"}
	ret := &fakeRetriever{docs: []retrieval.Document{{ID: "d1", Content: "ships are large"}}}
	f := newFlows(t, gen, flows.WithRetrieval(ret, &fakeIndexer{}))

	id := createChat(t, f)

	_, err := f.SendTextMessage(context.Background(), flows.SendMessageRequest{
		ChatID:          id,
		Messages:        []string{"tell me about ships"},
		RetrieveContext: "ships",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"ships"}, ret.queries)
	require.Len(t, gen.requests, 1)
	require.Len(t, gen.requests[0].Documents, 1)
	assert.Equal(t, "ships are large", gen.requests[0].Documents[0].Content)
}

func TestSendTextMessage_RetrievalFailureAborts(t *testing.T) {
	gen := &fakeGenerator{reply: "never"}
	ret := &fakeRetriever{err: errors.New("index offline")}
	f := newFlows(t, gen, flows.WithRetrieval(ret, &fakeIndexer{}))

	id := createChat(t, f)

	_, err := f.SendTextMessage(context.Background(), flows.SendMessageRequest{
		ChatID:          id,
		Messages:        []string{"tell me about ships"},
		RetrieveContext: "ships",
	})
	require.Error(t, err)
	assert.Empty(t, gen.requests, "model must not be called when retrieval fails")
}

func TestSendSpeechMessage(t *testing.T) {
	gen := &fakeGenerator{reply: "heard you"}
	tr := &fakeTranscriber{text: "what time is it"}
	f := newFlows(t, gen, flows.WithTranscriber(tr))

	id := createChat(t, f)

	resp, err := f.SendSpeechMessage(context.Background(), flows.SendSpeechMessageRequest{
		ChatID: id,
		Audio:  []byte("fake-audio"),
	})
	require.NoError(t, err)
	assert.Equal(t, "what time is it", resp.TranscribedText)
	assert.Equal(t, "heard you", resp.TextResponse)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "what time is it", gen.requests[0].History[0].Content)
}

func TestSendSpeechMessage_ForwardsOverrides(t *testing.T) {
	gen := &fakeGenerator{reply: "aye"}
	tr := &fakeTranscriber{text: "what time is it"}
	f := newFlows(t, gen, flows.WithTranscriber(tr))

	id := createChat(t, f)

	_, err := f.SendSpeechMessage(context.Background(), flows.SendSpeechMessageRequest{
		ChatID:       id,
		Audio:        []byte("fake-audio"),
		Instructions: "Answer tersely.",
		Config:       session.GenerationConfig{MaxOutputTokens: 32, Temperature: 0.1},
	})
	require.NoError(t, err)

	require.Len(t, gen.requests, 1)
	assert.Equal(t, "Answer tersely.", gen.requests[0].Instructions)
	assert.Equal(t, 32, gen.requests[0].Config.MaxOutputTokens)
	assert.InDelta(t, 0.1, gen.requests[0].Config.Temperature, 1e-9)
}

func TestSendSpeechMessage_Validation(t *testing.T) {
	f := newFlows(t, &fakeGenerator{reply: "ok"}, flows.WithTranscriber(&fakeTranscriber{text: "hi"}))
	ctx := context.Background()

	_, err := f.SendSpeechMessage(ctx, flows.SendSpeechMessageRequest{Audio: []byte("x")})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)

	_, err = f.SendSpeechMessage(ctx, flows.SendSpeechMessageRequest{ChatID: "some-id"})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)
}

func TestSendSpeechMessage_NoTranscriber(t *testing.T) {
	f := newFlows(t, &fakeGenerator{reply: "ok"})

	_, err := f.SendSpeechMessage(context.Background(), flows.SendSpeechMessageRequest{
		ChatID: "some-id",
		Audio:  []byte("x"),
	})
	assert.ErrorIs(t, err, flows.ErrNotConfigured)
}

func TestTranscribe(t *testing.T) {
	f := newFlows(t, &fakeGenerator{}, flows.WithTranscriber(&fakeTranscriber{text: "hello world"}))

	resp, err := f.Transcribe(context.Background(), flows.TranscribeRequest{Audio: []byte("audio")})
	require.NoError(t, err)
	assert.Equal(t, "hello world", resp.Text)

	_, err = f.Transcribe(context.Background(), flows.TranscribeRequest{})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)
}

func TestSynthesizeSpeech(t *testing.T) {
	synth := &fakeSynthesizer{audio: provider.Audio{Data: []byte("mp3"), ContentType: "audio/mpeg"}}
	f := newFlows(t, &fakeGenerator{}, flows.WithSynthesizer(synth))

	resp, err := f.SynthesizeSpeech(context.Background(), flows.SynthesizeRequest{Text: "read this"})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), resp.Audio)
	assert.Equal(t, "audio/mpeg", resp.ContentType)

	_, err = f.SynthesizeSpeech(context.Background(), flows.SynthesizeRequest{})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)
}

func TestExtractPDFText_Validation(t *testing.T) {
	f := newFlows(t, &fakeGenerator{})
	ctx := context.Background()

	_, err := f.ExtractPDFText(ctx, flows.ExtractPDFRequest{})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)

	_, err = f.ExtractPDFText(ctx, flows.ExtractPDFRequest{Data: []byte("x"), URL: "http://example.com/a.pdf"})
	assert.ErrorIs(t, err, flows.ErrInvalidInput)
}

func TestIndexPDF_RequiresIndexer(t *testing.T) {
	f := newFlows(t, &fakeGenerator{})

	_, err := f.IndexPDF(context.Background(), flows.IndexPDFRequest{Data: []byte("x")})
	assert.ErrorIs(t, err, flows.ErrNotConfigured)
}

type captureObserver struct {
	events []observability.Event
}

func (c *captureObserver) OnEvent(ctx context.Context, event observability.Event) {
	c.events = append(c.events, event)
}

func (c *captureObserver) types() []observability.EventType {
	types := make([]observability.EventType, 0, len(c.events))
	for _, e := range c.events {
		types = append(types, e.Type)
	}
	return types
}

func TestFlowEvents(t *testing.T) {
	obs := &captureObserver{}
	f := newFlows(t, &fakeGenerator{reply: "ok"}, flows.WithObserver(obs))
	ctx := context.Background()

	resp, err := f.CreateChat(ctx, flows.CreateChatRequest{})
	require.NoError(t, err)

	assert.Contains(t, obs.types(), flows.EventFlowStart)
	assert.Contains(t, obs.types(), flows.EventFlowComplete)

	obs.events = nil
	_, err = f.SendTextMessage(ctx, flows.SendMessageRequest{
		ChatID:   resp.ChatID,
		Messages: []string{"hello"},
	})
	require.NoError(t, err)

	assert.Contains(t, obs.types(), flows.EventFlowStart)
	assert.Contains(t, obs.types(), flows.EventFlowComplete)
}
