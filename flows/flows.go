// Package flows exposes the callable assistant operations: chat lifecycle,
// message exchange with optional retrieval context and speech synthesis,
// transcription, and PDF extraction/indexing. Each flow validates its
// inputs, delegates to the session, chat, provider, retrieval and pdf
// packages, and returns payload-level results.
package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/parley-ai/parley/chat"
	"github.com/parley-ai/parley/observability"
	"github.com/parley-ai/parley/pdf"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/session"
)

// ErrInvalidInput indicates a request payload that fails validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotConfigured indicates a flow whose collaborator was not wired at
// startup (e.g. transcription without a transcriber).
var ErrNotConfigured = errors.New("flow not configured")

// Option configures Flows after construction.
type Option func(*Flows)

// WithTranscriber enables the speech-message and transcribe flows.
func WithTranscriber(t provider.Transcriber) Option {
	return func(f *Flows) { f.transcriber = t }
}

// WithSynthesizer enables speech synthesis.
func WithSynthesizer(s provider.Synthesizer) Option {
	return func(f *Flows) { f.synthesizer = s }
}

// WithRetrieval enables document indexing and retrieval context.
func WithRetrieval(r retrieval.Retriever, i retrieval.Indexer) Option {
	return func(f *Flows) {
		f.retriever = r
		f.indexer = i
	}
}

// WithChunkConfig overrides the PDF chunking defaults.
func WithChunkConfig(cfg pdf.ChunkConfig) Option {
	return func(f *Flows) { f.chunkCfg = cfg }
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(f *Flows) { f.observer = o }
}

// WithHTTPClient overrides the client used for URL-sourced PDF fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Flows) { f.httpClient = c }
}

// Flows is the assistant's operation surface. Construct once at startup
// and share; all flows are safe for concurrent use.
type Flows struct {
	manager  *session.Manager
	executor *chat.Executor

	transcriber provider.Transcriber
	synthesizer provider.Synthesizer
	retriever   retrieval.Retriever
	indexer     retrieval.Indexer

	chunkCfg   pdf.ChunkConfig
	observer   observability.Observer
	httpClient *http.Client
}

// New creates the flow surface over a session store and generator. The
// chat executor and lifecycle manager are built internally; collaborators
// are attached via options.
func New(store session.Store, generator provider.Generator, opts ...Option) *Flows {
	f := &Flows{
		manager:  session.NewManager(store),
		chunkCfg: pdf.DefaultChunkConfig(),
		observer: observability.NoOpObserver{},
	}

	for _, opt := range opts {
		opt(f)
	}

	f.executor = chat.NewExecutor(store, generator, chat.WithObserver(f.observer))
	return f
}

// CreateChat creates a session and returns its id. Empty instructions and
// zero config fields take the session defaults.
func (f *Flows) CreateChat(ctx context.Context, req CreateChatRequest) (CreateChatResponse, error) {
	f.emitStart(ctx, "createChat", nil)

	id, err := f.manager.Create(ctx, req.Instructions, req.Config)
	if err != nil {
		f.emitError(ctx, "createChat", err)
		return CreateChatResponse{}, err
	}

	f.emitComplete(ctx, "createChat", map[string]any{"chat_id": id})
	return CreateChatResponse{ChatID: id}, nil
}

// DeleteChat removes a session. Returns session.ErrNotFound when absent.
func (f *Flows) DeleteChat(ctx context.Context, chatID string) error {
	if chatID == "" {
		return fmt.Errorf("%w: chatId is required", ErrInvalidInput)
	}
	f.emitStart(ctx, "deleteChat", map[string]any{"chat_id": chatID})

	if err := f.manager.Delete(ctx, chatID); err != nil {
		f.emitError(ctx, "deleteChat", err)
		return err
	}
	f.emitComplete(ctx, "deleteChat", map[string]any{"chat_id": chatID})
	return nil
}

// SendTextMessage submits messages to a chat. When RetrieveContext is set
// the index is queried first and matches accompany the model call; when
// GenerateAudio is set the reply is synthesized, with synthesis failures
// reported in AudioError rather than failing the flow.
func (f *Flows) SendTextMessage(ctx context.Context, req SendMessageRequest) (SendMessageResponse, error) {
	if req.ChatID == "" {
		return SendMessageResponse{}, fmt.Errorf("%w: chatId is required", ErrInvalidInput)
	}
	if len(req.Messages) == 0 {
		return SendMessageResponse{}, fmt.Errorf("%w: messages is required", ErrInvalidInput)
	}
	for i, m := range req.Messages {
		if m == "" {
			return SendMessageResponse{}, fmt.Errorf("%w: messages[%d] is empty", ErrInvalidInput, i)
		}
	}

	f.emitStart(ctx, "sendMessage", map[string]any{
		"chat_id":  req.ChatID,
		"messages": len(req.Messages),
	})

	opts := chat.Options{
		Instructions: req.Instructions,
		Config:       req.Config,
	}

	if req.RetrieveContext != "" {
		if f.retriever == nil {
			return SendMessageResponse{}, fmt.Errorf("%w: retrieval", ErrNotConfigured)
		}
		docs, err := f.retriever.Retrieve(ctx, req.RetrieveContext)
		if err != nil {
			f.emitError(ctx, "sendMessage", err)
			return SendMessageResponse{}, fmt.Errorf("failed to retrieve context: %w", err)
		}
		opts.Documents = docs
	}

	text, err := f.executor.SubmitMessages(ctx, req.ChatID, req.Messages, opts)
	if err != nil {
		f.emitError(ctx, "sendMessage", err)
		return SendMessageResponse{}, err
	}

	resp := SendMessageResponse{TextResponse: text}

	if req.GenerateAudio {
		audio, synthErr := f.synthesize(ctx, text, req.VoiceID, req.ModelID)
		if synthErr != nil {
			resp.AudioError = synthErr.Error()
			f.emitError(ctx, "sendMessage.synthesize", synthErr)
		} else {
			resp.AudioResponse = audio.Data
			resp.AudioContentType = audio.ContentType
		}
	}

	f.emitComplete(ctx, "sendMessage", map[string]any{
		"chat_id":  req.ChatID,
		"messages": len(req.Messages),
	})
	return resp, nil
}

// SendSpeechMessage transcribes the audio and submits the transcript as a
// single text message.
func (f *Flows) SendSpeechMessage(ctx context.Context, req SendSpeechMessageRequest) (SendSpeechMessageResponse, error) {
	if req.ChatID == "" {
		return SendSpeechMessageResponse{}, fmt.Errorf("%w: chatId is required", ErrInvalidInput)
	}
	if len(req.Audio) == 0 {
		return SendSpeechMessageResponse{}, fmt.Errorf("%w: base64Audio is required", ErrInvalidInput)
	}
	if f.transcriber == nil {
		return SendSpeechMessageResponse{}, fmt.Errorf("%w: transcription", ErrNotConfigured)
	}
	f.emitStart(ctx, "sendSpeechMessage", map[string]any{
		"chat_id": req.ChatID,
		"bytes":   len(req.Audio),
	})

	transcript, err := f.transcriber.Transcribe(ctx, req.Audio, req.ContentType)
	if err != nil {
		f.emitError(ctx, "sendSpeechMessage", err)
		return SendSpeechMessageResponse{}, fmt.Errorf("failed to transcribe: %w", err)
	}

	inner, err := f.SendTextMessage(ctx, SendMessageRequest{
		ChatID:        req.ChatID,
		Messages:      []string{transcript},
		Instructions:  req.Instructions,
		Config:        req.Config,
		GenerateAudio: req.GenerateAudio,
		VoiceID:       req.VoiceID,
		ModelID:       req.ModelID,
	})
	if err != nil {
		return SendSpeechMessageResponse{}, err
	}

	return SendSpeechMessageResponse{
		SendMessageResponse: inner,
		TranscribedText:     transcript,
	}, nil
}

// Transcribe converts speech audio to text.
func (f *Flows) Transcribe(ctx context.Context, req TranscribeRequest) (TranscribeResponse, error) {
	if len(req.Audio) == 0 {
		return TranscribeResponse{}, fmt.Errorf("%w: base64Audio is required", ErrInvalidInput)
	}
	if f.transcriber == nil {
		return TranscribeResponse{}, fmt.Errorf("%w: transcription", ErrNotConfigured)
	}
	f.emitStart(ctx, "transcribe", map[string]any{"bytes": len(req.Audio)})

	text, err := f.transcriber.Transcribe(ctx, req.Audio, req.ContentType)
	if err != nil {
		f.emitError(ctx, "transcribe", err)
		return TranscribeResponse{}, err
	}

	f.emitComplete(ctx, "transcribe", map[string]any{"bytes": len(req.Audio)})
	return TranscribeResponse{Text: text}, nil
}

// SynthesizeSpeech converts text to speech audio.
func (f *Flows) SynthesizeSpeech(ctx context.Context, req SynthesizeRequest) (SynthesizeResponse, error) {
	if req.Text == "" {
		return SynthesizeResponse{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	f.emitStart(ctx, "synthesize", map[string]any{"chars": len(req.Text)})

	audio, err := f.synthesize(ctx, req.Text, req.VoiceID, req.ModelID)
	if err != nil {
		f.emitError(ctx, "synthesize", err)
		return SynthesizeResponse{}, err
	}

	f.emitComplete(ctx, "synthesize", map[string]any{"bytes": len(audio.Data)})
	return SynthesizeResponse{Audio: audio.Data, ContentType: audio.ContentType}, nil
}

// ExtractPDFText extracts plain text from an inline or URL-sourced PDF.
func (f *Flows) ExtractPDFText(ctx context.Context, req ExtractPDFRequest) (ExtractPDFResponse, error) {
	f.emitStart(ctx, "extractPdf", nil)

	text, err := f.extract(ctx, req.Data, req.URL)
	if err != nil {
		f.emitError(ctx, "extractPdf", err)
		return ExtractPDFResponse{}, err
	}

	f.emitComplete(ctx, "extractPdf", map[string]any{"chars": len(text)})
	return ExtractPDFResponse{Text: text}, nil
}

// IndexPDF extracts, chunks and indexes a PDF for retrieval. Returns the
// number of chunks indexed.
func (f *Flows) IndexPDF(ctx context.Context, req IndexPDFRequest) (IndexPDFResponse, error) {
	if f.indexer == nil {
		return IndexPDFResponse{}, fmt.Errorf("%w: retrieval", ErrNotConfigured)
	}
	f.emitStart(ctx, "indexPdf", nil)

	text, err := f.extract(ctx, req.Data, req.URL)
	if err != nil {
		f.emitError(ctx, "indexPdf", err)
		return IndexPDFResponse{}, err
	}

	chunks := pdf.Chunk(text, f.chunkCfg)
	if len(chunks) == 0 {
		return IndexPDFResponse{}, fmt.Errorf("%w: document has no indexable text", ErrInvalidInput)
	}

	docs := make([]retrieval.Document, 0, len(chunks))
	for i, chunk := range chunks {
		metadata := make(map[string]any, len(req.Metadata)+1)
		for k, v := range req.Metadata {
			metadata[k] = v
		}
		metadata["chunk"] = strconv.Itoa(i)
		docs = append(docs, retrieval.FromText(chunk, metadata))
	}

	if err := f.indexer.Index(ctx, docs); err != nil {
		f.emitError(ctx, "indexPdf", err)
		return IndexPDFResponse{}, fmt.Errorf("failed to index document: %w", err)
	}

	f.emitComplete(ctx, "indexPdf", map[string]any{"chunks": len(docs)})
	return IndexPDFResponse{Chunks: len(docs)}, nil
}

func (f *Flows) synthesize(ctx context.Context, text, voiceID, modelID string) (provider.Audio, error) {
	if f.synthesizer == nil {
		return provider.Audio{}, fmt.Errorf("%w: synthesis", ErrNotConfigured)
	}
	return f.synthesizer.Synthesize(ctx, text, voiceID, modelID)
}

func (f *Flows) extract(ctx context.Context, data []byte, url string) (string, error) {
	switch {
	case len(data) > 0 && url != "":
		return "", fmt.Errorf("%w: provide base64Pdf or url, not both", ErrInvalidInput)
	case len(data) > 0:
		return pdf.ExtractText(data)
	case url != "":
		return pdf.ExtractTextFromURL(ctx, f.httpClient, url)
	default:
		return "", fmt.Errorf("%w: base64Pdf or url is required", ErrInvalidInput)
	}
}

func (f *Flows) emitStart(ctx context.Context, flow string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["flow"] = flow
	f.observer.OnEvent(ctx, observability.NewEvent(EventFlowStart, observability.LevelVerbose, "flows", data))
}

func (f *Flows) emitComplete(ctx context.Context, flow string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["flow"] = flow
	f.observer.OnEvent(ctx, observability.NewEvent(EventFlowComplete, observability.LevelInfo, "flows", data))
}

func (f *Flows) emitError(ctx context.Context, flow string, err error) {
	f.observer.OnEvent(ctx, observability.NewEvent(EventFlowError, observability.LevelError, "flows", map[string]any{
		"flow":  flow,
		"error": err.Error(),
	}))
}
