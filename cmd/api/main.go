// Package main is the entry point for the API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gct-et/assistant/internal/config"
	"github.com/gct-et/assistant/internal/handler"
	"github.com/gct-et/assistant/internal/llm"
	natsclient "github.com/gct-et/assistant/internal/nats"
	"github.com/gct-et/assistant/internal/service"
	"github.com/gct-et/assistant/pkg/logger"
	"github.com/gct-et/assistant/pkg/tracing"
)

func main() {
	cfg := config.Load()

	var log *logger.Logger
	var err error
	if cfg.Environment == "development" {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server", zap.String("provider", cfg.LLMProvider))

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "gct-assistant", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Events are optional; without NATS the stream endpoint is disabled.
	var (
		publisher  service.EventPublisher
		subscriber handler.EventSubscriber
		natsConn   handler.Connection
	)
	if cfg.NATSEnabled {
		natsClient, err := natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		bus := natsclient.NewEventBus(natsClient)
		publisher, subscriber, natsConn = bus, bus, natsClient
		log.Info("NATS events enabled", zap.String("url", cfg.NATSURL))
	}

	// The model client is built once and shared by every dispatch.
	var (
		llmClient llm.Client
		provider  string
	)
	llmClient, err = llm.NewClient(ctx, llm.Provider(cfg.LLMProvider), cfg.APIKey())
	if err != nil {
		log.Warn("failed to create LLM client, replies will use the fallback message", zap.Error(err))
	} else {
		provider = llmClient.Name()
		log.Info("LLM client ready", zap.String("provider", provider), zap.Strings("models", llmClient.Models()))
	}

	classifier := service.NewKeywordClassifier(cfg.ImageKeywords)
	log.Info("image intent keywords", zap.Strings("keywords", classifier.Keywords()))

	dispatcher := service.NewDispatcher(
		llmClient,
		classifier,
		service.DispatcherConfig{
			TextModel:   cfg.TextModel,
			ImageModel:  cfg.ImageModel,
			SpeechModel: cfg.SpeechModel,
			Voice:       cfg.SpeechVoice,
			Temperature: cfg.TextTemperature,
			MaxContext:  cfg.ContextWindow,
		},
		log,
	)

	conversationSvc := service.NewConversationService(publisher, log)
	messageSvc := service.NewMessageService(conversationSvc, dispatcher, cfg.ContextWindow, log)
	profileSvc := service.NewProfileService(log)

	router := handler.NewRouter(handler.Handlers{
		Health:        handler.NewHealthHandler(natsConn, provider),
		Conversations: handler.NewConversationHandler(conversationSvc, log),
		Messages:      handler.NewMessageHandler(messageSvc, conversationSvc, log),
		Stream:        handler.NewStreamHandler(conversationSvc, subscriber, log),
		Assist:        handler.NewAssistHandler(dispatcher, log),
		Profile:       handler.NewProfileHandler(profileSvc, log),
	}, handler.RouterConfig{
		JWTSecret:         cfg.JWTSecret,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		Logger:            log,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
