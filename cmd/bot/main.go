package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	audioimpl "github.com/quokkastudio/vcscribe/external/audio"
	configloader "github.com/quokkastudio/vcscribe/external/config"
	deliveryimpl "github.com/quokkastudio/vcscribe/external/delivery"
	"github.com/quokkastudio/vcscribe/external/discord"
	repositoryimpl "github.com/quokkastudio/vcscribe/external/repository"
	summarizerimpl "github.com/quokkastudio/vcscribe/external/summarizer"
	transcriberimpl "github.com/quokkastudio/vcscribe/external/transcriber"
	"github.com/quokkastudio/vcscribe/internal/archive"
	"github.com/quokkastudio/vcscribe/internal/config"
	discordpkg "github.com/quokkastudio/vcscribe/internal/discord"
	"github.com/quokkastudio/vcscribe/internal/session"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching voice scribe")
	run(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	summarizerimpl.RegisterDI(injector)
	deliveryimpl.RegisterDI(injector)
	archive.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func run(injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve session manager", "error", err)
		os.Exit(1)
	}
	pruner, err := do.Invoke[*archive.Pruner](injector)
	if err != nil {
		slog.Error("failed to resolve transcript pruner", "error", err)
		os.Exit(1)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancelConnect()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(connectCtx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pruner.Run(ctx)

	done := make(chan struct{})
	go func() {
		if err := manager.Run(ctx); err != nil {
			slog.Error("session manager stopped", "error", err)
		}
		close(done)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		<-done
	case <-done:
	}
}
