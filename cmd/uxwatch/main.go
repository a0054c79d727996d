package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/uxwatch/uxwatch/internal/adapter/inbound/controlbot"
	"github.com/uxwatch/uxwatch/internal/adapter/inbound/webhook"
	"github.com/uxwatch/uxwatch/internal/adapter/outbound/llm/gemini"
	tgnotifier "github.com/uxwatch/uxwatch/internal/adapter/outbound/notification/telegram"
	"github.com/uxwatch/uxwatch/internal/adapter/outbound/mtproto"
	"github.com/uxwatch/uxwatch/internal/adapter/outbound/persistence/sqlite"
	"github.com/uxwatch/uxwatch/internal/config"
	"github.com/uxwatch/uxwatch/internal/domain/service"
	"github.com/uxwatch/uxwatch/pkg/health"
	"github.com/uxwatch/uxwatch/pkg/version"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = buildLogger(cfg.Logging)

	// --- Database ---
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              cfg.Database.SQLite.Path,
		MaxOpenConns:      cfg.Database.SQLite.MaxOpenConns,
		PragmaJournalMode: cfg.Database.SQLite.PragmaJournalMode,
		PragmaBusyTimeout: cfg.Database.SQLite.PragmaBusyTimeout,
	})
	if err != nil {
		logger.Error("failed to open sqlite store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// --- Repositories ---
	sessionRepo := sqlite.NewSessionRepo(store)
	deliveryRepo := sqlite.NewDeliveryRepo(store)

	// --- LLM ---
	generator, err := gemini.NewClient(gemini.Config{
		BaseURL:     cfg.LLM.Gemini.BaseURL,
		APIKey:      cfg.LLM.Gemini.APIKey,
		Model:       cfg.LLM.Gemini.Model,
		Timeout:     cfg.LLM.Gemini.Timeout,
		MaxRetries:  cfg.LLM.Gemini.MaxRetries,
		Temperature: cfg.LLM.Gemini.Temperature,
	})
	if err != nil {
		logger.Error("failed to create LLM client", "error", err)
		os.Exit(1)
	}

	// --- Control sender ---
	notifier, err := tgnotifier.NewNotifier(cfg.ControlBot.Token)
	if err != nil {
		logger.Error("failed to create control sender", "error", err)
		os.Exit(1)
	}

	// --- Primary client ---
	var proxyURL string
	if cfg.Telegram.Proxy.Enabled() {
		proxyURL = fmt.Sprintf("socks5://%s:%d", cfg.Telegram.Proxy.Server, cfg.Telegram.Proxy.Port)
	}
	messenger, err := mtproto.NewClient(mtproto.Config{
		AppID:    cfg.Telegram.AppID,
		AppHash:  cfg.Telegram.AppHash,
		ProxyURL: proxyURL,
	}, sessionRepo, logger)
	if err != nil {
		logger.Error("failed to create protocol client", "error", err)
		os.Exit(1)
	}

	// --- Domain services ---
	slot := service.NewResponseSlot()
	broker := service.NewInputBroker(slot, notifier, cfg.ControlBot.ChatID, cfg.ControlBot.PromptTimeout, logger)
	relay := service.NewControlRelay(slot, notifier, cfg.ControlBot.ChatID, logger)
	authenticator := service.NewAuthenticator(messenger, broker, logger)
	pipeline := service.NewPipeline(messenger, generator, deliveryRepo, service.PipelineConfig{
		PortfolioURL:   cfg.Reply.PortfolioURL,
		AttachmentPath: cfg.Reply.AttachmentPath,
	}, logger)
	dispatcher := service.NewDispatcher(messenger, pipeline, cfg.Telegram.ActiveChannels(), logger)

	// --- Webhook ---
	webhookHandler := webhook.NewHandler(relay)
	webhookServer := webhook.NewServer(webhook.ServerConfig{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		SecretToken:  cfg.ControlBot.WebhookSecret,
	}, webhookHandler)

	// --- Health checker ---
	checker := health.NewChecker()
	checker.Register("database", func(ctx context.Context) error {
		return store.DB.PingContext(ctx)
	})
	checker.Register("llm", func(ctx context.Context) error {
		return generator.HealthCheck(ctx)
	})
	checker.Register("control_bot", func(ctx context.Context) error {
		return notifier.Ping(ctx)
	})

	// --- Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", checker.LivenessHandler())
	metricsMux.HandleFunc("/readyz", checker.ReadinessHandler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	// --- Signal handling & startup ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Webhook HTTP server.
	g.Go(func() error {
		logger.Info("starting webhook server", "port", cfg.Server.Port)
		return webhookServer.Start(gCtx)
	})

	// Metrics/health server.
	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.Server.MetricsPort)
		errCh := make(chan error, 1)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()
		select {
		case <-gCtx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	})

	// Control bot long polling.
	g.Go(func() error {
		logger.Info("starting control bot poller")
		poller, err := controlbot.NewPoller(controlbot.Config{
			Token:          cfg.ControlBot.Token,
			PollingTimeout: cfg.ControlBot.PollingTimeout,
		}, relay, logger)
		if err != nil {
			return err
		}
		err = poller.Run(gCtx)
		if gCtx.Err() != nil {
			return nil
		}
		return err
	})

	// Primary client: sign in (relaying credentials through the control bot
	// when needed), then watch the configured channels until shutdown.
	g.Go(func() error {
		logger.Info("starting primary client")
		return messenger.Run(gCtx, func(runCtx context.Context) error {
			if err := authenticator.Authenticate(runCtx); err != nil {
				return fmt.Errorf("authentication: %w", err)
			}
			if err := dispatcher.Start(runCtx); err != nil {
				return fmt.Errorf("starting dispatcher: %w", err)
			}
			<-runCtx.Done()
			return runCtx.Err()
		})
	})

	logger.Info("uxwatch started", "version", version.String())

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("uxwatch stopped")
}

// buildLogger constructs a slog.Logger based on config.
func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
