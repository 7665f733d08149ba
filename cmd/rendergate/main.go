package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/rendergate/internal/api"
	"git.home.luguber.info/inful/rendergate/internal/catalog"
	"git.home.luguber.info/inful/rendergate/internal/config"
	"git.home.luguber.info/inful/rendergate/internal/engine"
	"git.home.luguber.info/inful/rendergate/internal/events"
	"git.home.luguber.info/inful/rendergate/internal/formatter"
	"git.home.luguber.info/inful/rendergate/internal/history"
	"git.home.luguber.info/inful/rendergate/internal/janitor"
	"git.home.luguber.info/inful/rendergate/internal/mail"
	"git.home.luguber.info/inful/rendergate/internal/metrics"
	"git.home.luguber.info/inful/rendergate/internal/render"
	"git.home.luguber.info/inful/rendergate/internal/storage"
	"git.home.luguber.info/inful/rendergate/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"rendergate.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
	} `cmd:"" default:"1" help:"Start the render gateway server"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "serve":
		if err := runServe(CLI.Config); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println(version.String())
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Artifact store. A configured but unusable path is fatal: silently
	// falling back to inline delivery would change response semantics.
	var store *storage.FSStore
	if cfg.StorageEnabled() {
		store, err = storage.NewFSStore(cfg.StoragePath)
		if err != nil {
			return err
		}
		if err := store.Validate(); err != nil {
			return err
		}
		slog.Info("Artifact store ready", "path", cfg.StoragePath)
	} else {
		slog.Info("No storage path configured, rendered documents are returned inline")
	}

	cat, err := catalog.New(cfg.TemplatesPath)
	if err != nil {
		return err
	}
	watcher, err := catalog.NewWatcher(cat)
	if err != nil {
		slog.Warn("Template watcher unavailable", "error", err)
	} else {
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	registry := formatter.NewRegistry()
	registry.MarkBaseline()

	var mailer mail.Mailer
	if cfg.EmailEnabled() {
		m, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			Unsafe:   cfg.SMTP.Unsafe,
		})
		if err != nil {
			return err
		}
		mailer = m
		slog.Info("Email delivery enabled", "host", cfg.SMTP.Host)
	}

	var hist *history.SQLiteStore
	if cfg.HistoryDB != "" {
		hist, err = history.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer hist.Close()
	}

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			// Events are an enrichment, not a dependency.
			slog.Warn("NATS unavailable, render events disabled", "error", err)
		} else {
			publisher = np
			defer np.Close()
		}
	}

	var registryProm *prom.Registry
	var recorder metrics.Recorder
	if cfg.MetricsEnabled {
		registryProm = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registryProm)
	}

	if err := os.MkdirAll(cfg.SpoolPath, 0o755); err != nil {
		return err
	}
	sweeper, err := janitor.New(cfg.SpoolPath, cfg.SpoolMaxAge)
	if err != nil {
		slog.Warn("Spool janitor unavailable", "error", err)
	} else {
		if err := sweeper.Start(ctx, cfg.CleanupInterval); err != nil {
			slog.Warn("Spool janitor failed to start", "error", err)
		}
		defer sweeper.Stop()
	}

	pipelineCfg := render.Config{
		Engine:   engine.NewTagEngine(),
		Registry: registry,
		Mailer:   mailer,
		Events:   publisher,
		Metrics:  recorder,
		Timeout:  cfg.RenderTimeout,
	}
	if store != nil {
		pipelineCfg.Store = store
	}
	if hist != nil {
		pipelineCfg.History = hist
	}

	serverOpts := api.Options{
		Addr:            fmt.Sprintf(":%d", cfg.Port),
		Username:        cfg.Username,
		Password:        cfg.Password,
		Pipeline:        render.New(pipelineCfg),
		Store:           store,
		Catalog:         cat,
		SpoolDir:        cfg.SpoolPath,
		MetricsRegistry: registryProm,
	}
	if hist != nil {
		serverOpts.History = hist
	}

	server := api.NewServer(serverOpts)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Render gateway listening", "port", cfg.Port)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
