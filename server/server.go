// Package server exposes the flow surface over HTTP JSON endpoints, with
// Prometheus metrics and a health check.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/parley-ai/parley/chat"
	"github.com/parley-ai/parley/flows"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/session"
)

// Option configures a Server after construction.
type Option func(*Server)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server routes HTTP requests to flows.
type Server struct {
	flows   *flows.Flows
	metrics *Metrics
	logger  *slog.Logger
}

// New creates a Server over the given flow surface.
func New(f *flows.Flows, opts ...Option) *Server {
	s := &Server{
		flows:   f,
		metrics: NewMetrics(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, flow string, h http.HandlerFunc) {
		mux.Handle(pattern, s.metrics.instrument(flow, h))
	}

	route("POST /v1/chats", "createChat", s.handleCreateChat)
	route("POST /v1/chats/{id}/messages", "sendMessage", s.handleSendMessage)
	route("POST /v1/chats/{id}/speech", "sendSpeechMessage", s.handleSendSpeech)
	route("DELETE /v1/chats/{id}", "deleteChat", s.handleDeleteChat)
	route("POST /v1/transcribe", "transcribe", s.handleTranscribe)
	route("POST /v1/synthesize", "synthesize", s.handleSynthesize)
	route("POST /v1/pdf/extract", "extractPdf", s.handleExtractPDF)
	route("POST /v1/pdf/index", "indexPdf", s.handleIndexPDF)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", s.metrics.Handler())

	return mux
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req flows.CreateChatRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.flows.CreateChat(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req flows.SendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.ChatID = r.PathValue("id")

	resp, err := s.flows.SendTextMessage(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSendSpeech(w http.ResponseWriter, r *http.Request) {
	var req flows.SendSpeechMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.ChatID = r.PathValue("id")

	resp, err := s.flows.SendSpeechMessage(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := s.flows.DeleteChat(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req flows.TranscribeRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.flows.Transcribe(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req flows.SynthesizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.flows.SynthesizeSpeech(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExtractPDF(w http.ResponseWriter, r *http.Request) {
	var req flows.ExtractPDFRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.flows.ExtractPDFText(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndexPDF(w http.ResponseWriter, r *http.Request) {
	var req flows.IndexPDFRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.flows.IndexPDF(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body: "+err.Error()))
		return false
	}
	return true
}

// writeError maps flow errors to HTTP statuses: invalid input 400,
// missing resources 404, unconfigured collaborators 501, provider
// transport failures 502, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, flows.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, chat.ErrSessionNotFound), errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, flows.ErrNotConfigured):
		status = http.StatusNotImplemented
	case errors.Is(err, provider.ErrUnavailable):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorBody(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
