// Command parley runs the voice-enabled assistant service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parley-ai/parley/config"
	"github.com/parley-ai/parley/flows"
	"github.com/parley-ai/parley/observability"
	"github.com/parley-ai/parley/provider"
	"github.com/parley-ai/parley/retrieval"
	"github.com/parley-ai/parley/server"
	"github.com/parley-ai/parley/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "parley",
		Short:        "Voice-enabled conversational assistant service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	root.AddCommand(serve)
	return root
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	store, err := session.NewStore(&cfg.Session)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}

	generator, err := provider.NewOpenAI(cfg.OpenAI)
	if err != nil {
		return fmt.Errorf("failed to create openai provider: %w", err)
	}

	observer, err := observability.Compose(observability.NewSlogObserver(logger), cfg.Log.Observers...)
	if err != nil {
		return fmt.Errorf("failed to configure observers: %w", err)
	}

	opts := []flows.Option{
		flows.WithObserver(observer),
		flows.WithChunkConfig(cfg.Chunking),
		flows.WithTranscriber(generator),
	}

	if cfg.Synthesis {
		synthesizer, err := provider.NewElevenLabs(cfg.ElevenLabs)
		if err != nil {
			return fmt.Errorf("failed to create elevenlabs provider: %w", err)
		}
		opts = append(opts, flows.WithSynthesizer(synthesizer))
	}

	if cfg.Retrieval {
		embedder, err := retrieval.NewOpenAIEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		index := retrieval.NewVectorIndex(embedder)
		opts = append(opts, flows.WithRetrieval(index, index))
	}

	f := flows.New(store, generator, opts...)
	srv := server.New(f, server.WithLogger(logger))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
