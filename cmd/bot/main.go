package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/channel-steward/internal/di"
	"github.com/reshetovitsme/channel-steward/internal/dispatch"
	dialogueService "github.com/reshetovitsme/channel-steward/internal/modules/dialogue/service"
	"github.com/reshetovitsme/channel-steward/internal/scheduler"
	"github.com/reshetovitsme/channel-steward/internal/shared/config"
	httpServer "github.com/reshetovitsme/channel-steward/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/channel-steward/internal/transport/telegram"
	"github.com/samber/do/v2"
	slogmulti "github.com/samber/slog-multi"
)

func setupLogging(level slog.Level) {
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	// Use Fanout to send logs to both handlers
	multiHandler := slogmulti.Fanout(textHandler, jsonHandler)
	slog.SetDefault(slog.New(multiHandler))
}

func main() {
	setupLogging(slog.LevelInfo)

	// Setup dependency injection
	injector, err := di.Setup()
	if err != nil {
		slog.Error("Failed to setup dependency injection", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := di.Shutdown(injector); err != nil {
			slog.Error("Error during shutdown", "error", err)
		}
	}()

	// Get services from DI container
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.SlogLevel())

	b := do.MustInvoke[*bot.Bot](injector)
	handler := do.MustInvoke[*telegramHandler.Handler](injector)
	dispatcher := do.MustInvoke[*dispatch.Service](injector)
	dialogue := do.MustInvoke[*dialogueService.Manager](injector)
	sched := do.MustInvoke[*scheduler.Service](injector)
	server := do.MustInvoke[*httpServer.Server](injector)

	handler.RegisterCommands(b)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dispatcher.Start(ctx)
	dialogue.StartSweeper(ctx)
	sched.Start(ctx)

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Failed to start HTTP server", "error", err)
			os.Exit(1)
		}
	}()

	go b.Start(ctx)

	slog.Info("Application started", "port", cfg.HTTPPort, "timezone", cfg.Timezone, "triggers", sched.Entries())
	slog.Info("Press Ctrl+C to stop")

	<-ctx.Done()
	slog.Info("Shutting down...")
}
