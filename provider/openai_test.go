package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-ai/parley/core/protocol"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/session"
)

// chatCompletionServer captures the last chat request and replies with a
// fixed completion.
func chatCompletionServer(t *testing.T, reply string, captured *map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*captured = body

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":    "chatcmpl-1",
			"model": body["model"],
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestOpenAI_Generate(t *testing.T) {
	var captured map[string]any
	srv := chatCompletionServer(t, "Ahoy!", &captured)
	defer srv.Close()

	p, err := provider.NewOpenAI(provider.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	reply, err := p.Generate(context.Background(), provider.GenerateRequest{
		History: []protocol.Turn{
			protocol.NewTurn(protocol.RoleUser, "Hello"),
		},
		Instructions: "You are a pirate.",
		Config: session.GenerationConfig{
			MaxOutputTokens: 256,
			Temperature:     0.3,
			StopSequences:   []string{"END"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ahoy!", reply)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.EqualValues(t, 256, captured["max_tokens"])
	assert.InDelta(t, 0.3, captured["temperature"], 0.001)

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	first := messages[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "You are a pirate.", first["content"])

	second := messages[1].(map[string]any)
	assert.Equal(t, "user", second["role"])
	assert.Equal(t, "Hello", second["content"])
}

func TestOpenAI_Generate_RendersDocuments(t *testing.T) {
	var captured map[string]any
	srv := chatCompletionServer(t, "ok", &captured)
	defer srv.Close()

	p, err := provider.NewOpenAI(provider.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), provider.GenerateRequest{
		History: []protocol.Turn{protocol.NewTurn(protocol.RoleUser, "What does the manual say?")},
		Documents: []retrieval.Document{
			{ID: "d1", Content: "Chapter one text.", Metadata: map[string]any{"url": "https://example.com/manual.pdf"}},
		},
	})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)

	docMsg := messages[0].(map[string]any)
	assert.Equal(t, "system", docMsg["role"])
	assert.Contains(t, docMsg["content"], "Chapter one text.")
	assert.Contains(t, docMsg["content"], "https://example.com/manual.pdf")
}

func TestOpenAI_Generate_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := provider.NewOpenAI(provider.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), provider.GenerateRequest{
		History: []protocol.Turn{protocol.NewTurn(protocol.RoleUser, "Hello")},
	})
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestOpenAI_Transcribe_UnsupportedContentType(t *testing.T) {
	p, err := provider.NewOpenAI(provider.OpenAIConfig{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = p.Transcribe(context.Background(), []byte("audio"), "video/avi")
	assert.ErrorIs(t, err, provider.ErrUnsupportedContentType)
}

func TestOpenAI_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audio/transcriptions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"hello there"}`))
	}))
	defer srv.Close()

	p, err := provider.NewOpenAI(provider.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	text, err := p.Transcribe(context.Background(), []byte("fake-mp3-bytes"), "audio/mp3")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}

func TestNewOpenAI_RequiresAPIKey(t *testing.T) {
	_, err := provider.NewOpenAI(provider.OpenAIConfig{})
	assert.Error(t, err)
}
