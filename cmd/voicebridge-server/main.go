// Package main provides the voicebridge webhook server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/voicebridge/internal/config"
	"github.com/raphaelgruber/voicebridge/internal/llm"
	"github.com/raphaelgruber/voicebridge/internal/metrics"
	"github.com/raphaelgruber/voicebridge/internal/prompt"
	"github.com/raphaelgruber/voicebridge/internal/realtime"
	"github.com/raphaelgruber/voicebridge/internal/server"
	"github.com/raphaelgruber/voicebridge/internal/session"
	"github.com/raphaelgruber/voicebridge/internal/twilio"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file (env vars take precedence)")
	flag.Parse()

	// Load configuration
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			slog.Error("failed to load config file", "file", *configFile, "error", err)
			os.Exit(1)
		}
	} else {
		cfg = config.Load()
	}

	// Initialize logging
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() {
		if err := cleanup(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()
	slog.SetDefault(logger)

	// Missing credentials are fatal: the process must not serve traffic
	// it cannot act on.
	if err := config.Validate(cfg); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.PublicBaseURL == "" {
		logger.Warn("PUBLIC_BASE_URL not set; provider callbacks will not be reachable")
	}

	systemPrompt, err := prompt.Load(cfg.PromptFile)
	if err != nil {
		logger.Error("failed to load system prompt", "error", err)
		os.Exit(1)
	}

	model, err := llm.NewModel(cfg)
	if err != nil {
		logger.Error("failed to create LLM model", "error", err)
		os.Exit(1)
	}

	twilioClient, err := twilio.NewClient(twilio.Config{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		BaseURL:    cfg.TwilioBaseURL,
	})
	if err != nil {
		logger.Error("failed to create Twilio client", "error", err)
		os.Exit(1)
	}

	// The media bridge is optional: without a realtime key the form-webhook
	// conversation loop still works, only /media-stream is disabled.
	var bridge *realtime.Bridge
	if cfg.RealtimeAPIKey != "" {
		bridge, err = realtime.NewBridge(realtime.Config{
			APIKey:       cfg.RealtimeAPIKey,
			Model:        cfg.RealtimeModel,
			Voice:        cfg.RealtimeVoice,
			Instructions: systemPrompt,
		}, logger)
		if err != nil {
			logger.Error("failed to create realtime bridge", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("realtime API key not set, media streaming disabled")
	}

	store := session.NewStore(systemPrompt)
	srv := server.New(cfg, logger, store, model, twilioClient, bridge, metrics.NewCollector())

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second, // long enough for one inference round-trip
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting voicebridge-server",
			"port", cfg.Port,
			"llm_provider", cfg.LLMProvider,
			"llm_model", cfg.LLMModel,
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	srv.Close()
	logger.Info("server stopped")
}
