package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-gonic/gin"

	"chat-relay/handler"
	"chat-relay/internal/config"
	"chat-relay/internal/integrations/gemini"
	"chat-relay/internal/integrations/huggingface"
	"chat-relay/internal/integrations/openai"
	"chat-relay/internal/integrations/paramstore"
	"chat-relay/internal/metrics"
	"chat-relay/internal/repository"
	"chat-relay/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "err", err)
		os.Exit(1)
	}
	cfg := config.Load(os.Getenv)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	// ---- AWS (only when a feature needs it) ----
	var awsCfg *aws.Config
	if cfg.ParamPrefix != "" || cfg.ExchangeTable != "" {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	if cfg.ParamPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(*awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		cfg, err = cfg.ResolveKeys(ctx, ssmClient)
		if err != nil {
			slog.Error("failed to resolve provider keys", "err", err)
			os.Exit(1)
		}
	}

	// ---- Providers, in priority order ----
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	providers := []usecase.Provider{
		gemini.NewClient(cfg.Gemini.APIKey, gemini.WithBaseURL(cfg.Gemini.URL), gemini.WithHTTPClient(httpClient)),
		huggingface.NewClient(cfg.HuggingFace.APIKey, huggingface.WithURL(cfg.HuggingFace.URL), huggingface.WithHTTPClient(httpClient)),
		openai.NewClient(cfg.OpenAI.APIKey, openai.WithBaseURL(cfg.OpenAI.URL), openai.WithHTTPClient(httpClient)),
	}
	slog.Info("providers configured",
		"gemini", cfg.Gemini.Enabled(),
		"huggingface", cfg.HuggingFace.Enabled(),
		"openai", cfg.OpenAI.Enabled(),
	)

	m := metrics.New()
	opts := []usecase.Option{usecase.WithObserver(m), usecase.WithLogger(logger)}

	if cfg.ExchangeTable != "" {
		journal, err := repository.New(awsdynamodb.NewFromConfig(*awsCfg), cfg.ExchangeTable)
		if err != nil {
			slog.Error("failed to create exchange journal", "err", err)
			os.Exit(1)
		}
		opts = append(opts, usecase.WithRecorder(journal))
	}

	dispatcher, err := usecase.NewDispatcher(providers, opts...)
	if err != nil {
		slog.Error("failed to create dispatcher", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(dispatcher, cfg.TemplatesDir,
		handler.WithMetricsHandler(m.Handler()),
		handler.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		adapter, err := handler.NewLambdaAdapter(h)
		if err != nil {
			slog.Error("failed to create lambda adapter", "err", err)
			os.Exit(1)
		}
		lambda.Start(adapter.Handle)
		return
	}

	if err := serve(cfg.Addr(), h); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains in-flight requests.
func serve(addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
