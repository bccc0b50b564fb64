package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RichardoC/humaniza/internal/api"
	"github.com/RichardoC/humaniza/internal/llm"
	"github.com/RichardoC/humaniza/internal/prompts"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(env envFunc) *cobra.Command {
	var webDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := env()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, database, client, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer database.Close()

			catalog, err := prompts.Load(cfg.PromptsPath)
			if err != nil {
				return err
			}

			opts := llm.Options{Provider: cfg.LLMProvider, APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}
			if cfg.LLMProvider == llm.ProviderOpenAI {
				opts = llm.Options{Provider: cfg.LLMProvider, APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL}
			}
			generator, err := llm.New(ctx, opts, catalog)
			if err != nil {
				return err
			}

			handlerOpts := []api.Option{api.WithMaxUpload(cfg.MaxUploadBytes)}
			if client != nil {
				handlerOpts = append(handlerOpts, api.WithAuth(client))
			}
			handler := api.NewHandler(store, generator, logger, handlerOpts...)

			mux := http.NewServeMux()
			mux.Handle("/api/", handler.Routes())
			if info, err := os.Stat(webDir); err == nil && info.IsDir() {
				mux.Handle("/", http.FileServer(http.Dir(webDir)))
			}

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       cfg.RequestTimeout,
				WriteTimeout:      cfg.RequestTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("Starting server",
					zap.String("addr", cfg.HTTPAddr),
					zap.String("llm_provider", cfg.LLMProvider),
					zap.String("db_driver", database.Driver()),
					zap.String("db_path", database.Path()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&webDir, "web", "web", "directory of static files served at /")
	return cmd
}
