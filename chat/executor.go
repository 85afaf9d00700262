// Package chat implements the turn executor: the load/append/generate/persist
// cycle that advances a stored session by one or more user messages.
//
// The executor composes a session store and a generator. Functional options
// allow overrides of the observer.
//
//	ex := chat.NewExecutor(store, generator)
//	reply, err := ex.SubmitMessages(ctx, id, []string{"hello"}, chat.Options{})
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/parley-ai/parley/core/protocol"
	"github.com/parley-ai/parley/observability"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/session"
)

// Options carries per-submission overrides. Zero values defer to the
// values recorded on the session.
type Options struct {
	// Instructions replaces the session's system instructions for this
	// submission when non-empty.
	Instructions string
	// Config is merged over the session's generation config; only
	// non-zero fields take effect.
	Config session.GenerationConfig
	// Documents are supporting context rendered into the system prompt.
	Documents []retrieval.Document
}

// Option configures an Executor after construction.
type Option func(*Executor)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// Executor advances sessions through model exchanges. Safe for concurrent
// use across distinct sessions; concurrent submissions against the same
// session follow last-writer-wins on the stored record.
type Executor struct {
	store     session.Store
	generator provider.Generator
	observer  observability.Observer
}

// NewExecutor creates an Executor over the given store and generator.
func NewExecutor(store session.Store, generator provider.Generator, opts ...Option) *Executor {
	e := &Executor{
		store:     store,
		generator: generator,
		observer:  observability.NoOpObserver{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SubmitMessages runs one exchange per message, in order, against the
// session's accumulated history. Each user turn is persisted before the
// model call and each assistant turn immediately after, so a mid-batch
// failure leaves every completed exchange durable and the failed user
// turn recorded without a reply. Returns the assistant replies joined
// with newlines.
func (e *Executor) SubmitMessages(ctx context.Context, sessionID string, messages []string, opts Options) (string, error) {
	// Load failures keep the store's own error (e.g. a corrupt record
	// wraps session.ErrLoadFailed); ErrPersistence is reserved for
	// failed writes.
	sess, found, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	instructions := opts.Instructions
	if instructions == "" {
		instructions = sess.Instructions
	}

	cfg := sess.Config
	cfg.Merge(&opts.Config)

	e.observer.OnEvent(ctx, observability.NewEvent(
		EventSubmitStart,
		observability.LevelInfo,
		"chat.SubmitMessages",
		map[string]any{
			"session_id":   sessionID,
			"messages":     len(messages),
			"history_size": len(sess.History),
		},
	))

	replies := make([]string, 0, len(messages))

	for i, message := range messages {
		if err := ctx.Err(); err != nil {
			return strings.Join(replies, "\n"), err
		}

		sess.Append(protocol.NewTurn(protocol.RoleUser, message))
		if err := e.store.Save(ctx, sess); err != nil {
			e.emitError(ctx, sessionID, i, err)
			return strings.Join(replies, "\n"), fmt.Errorf("%w: %s", ErrPersistence, err)
		}

		reply, err := e.generator.Generate(ctx, provider.GenerateRequest{
			History:      sess.History,
			Instructions: instructions,
			Config:       cfg,
			Documents:    opts.Documents,
		})
		if err != nil {
			e.emitError(ctx, sessionID, i, err)
			return strings.Join(replies, "\n"), fmt.Errorf("%w: %s", ErrModelInvocation, err)
		}
		if strings.TrimSpace(reply) == "" {
			e.emitError(ctx, sessionID, i, fmt.Errorf("empty reply"))
			return strings.Join(replies, "\n"), fmt.Errorf("%w: empty reply", ErrModelInvocation)
		}

		sess.Append(protocol.NewTurn(protocol.RoleAssistant, reply))
		if err := e.store.Save(ctx, sess); err != nil {
			e.emitError(ctx, sessionID, i, err)
			return strings.Join(replies, "\n"), fmt.Errorf("%w: %s", ErrPersistence, err)
		}

		replies = append(replies, reply)

		e.observer.OnEvent(ctx, observability.NewEvent(
			EventTurnComplete,
			observability.LevelVerbose,
			"chat.SubmitMessages",
			map[string]any{
				"session_id":   sessionID,
				"message":      i + 1,
				"reply_length": len(reply),
			},
		))
	}

	e.observer.OnEvent(ctx, observability.NewEvent(
		EventSubmitComplete,
		observability.LevelInfo,
		"chat.SubmitMessages",
		map[string]any{
			"session_id":   sessionID,
			"messages":     len(messages),
			"history_size": len(sess.History),
		},
	))

	return strings.TrimSpace(strings.Join(replies, "\n")), nil
}

func (e *Executor) emitError(ctx context.Context, sessionID string, message int, err error) {
	e.observer.OnEvent(ctx, observability.NewEvent(
		EventError,
		observability.LevelError,
		"chat.SubmitMessages",
		map[string]any{
			"session_id": sessionID,
			"message":    message + 1,
			"error":      err.Error(),
		},
	))
}
