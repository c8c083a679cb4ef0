package di

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/channel-steward/internal/dispatch"
	channelRepo "github.com/reshetovitsme/channel-steward/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/channel-steward/internal/modules/channel/service"
	dialogueService "github.com/reshetovitsme/channel-steward/internal/modules/dialogue/service"
	messageRepo "github.com/reshetovitsme/channel-steward/internal/modules/message/repository"
	messageService "github.com/reshetovitsme/channel-steward/internal/modules/message/service"
	statsRepo "github.com/reshetovitsme/channel-steward/internal/modules/stats/repository"
	statsService "github.com/reshetovitsme/channel-steward/internal/modules/stats/service"
	"github.com/reshetovitsme/channel-steward/internal/scheduler"
	"github.com/reshetovitsme/channel-steward/internal/shared/config"
	httpServer "github.com/reshetovitsme/channel-steward/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/channel-steward/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Channel Repository
	do.Provide(injector, func(i do.Injector) (channelRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := channelRepo.NewFileStorage(cfg.ConfigDir)
		if err != nil {
			return nil, oops.With("config_dir", cfg.ConfigDir, "context", "failed to initialize channel repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Message Repository
	do.Provide(injector, func(i do.Injector) (messageRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := messageRepo.NewFileStorage(cfg.ConfigDir)
		if err != nil {
			return nil, oops.With("config_dir", cfg.ConfigDir, "context", "failed to initialize message repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Stats Repository
	do.Provide(injector, func(i do.Injector) (statsRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := statsRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize stats repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Message Service
	do.Provide(injector, func(i do.Injector) (*messageService.Service, error) {
		repo := do.MustInvoke[messageRepo.Repository](i)
		return messageService.New(repo)
	})

	// Register Stats Service
	do.Provide(injector, func(i do.Injector) (*statsService.Service, error) {
		repo := do.MustInvoke[statsRepo.Repository](i)
		return statsService.New(repo), nil
	})

	// Register Channel Registry
	do.Provide(injector, func(i do.Injector) (*channelService.Registry, error) {
		chRepo := do.MustInvoke[channelRepo.Repository](i)
		messages := do.MustInvoke[*messageService.Service](i)
		return channelService.New(chRepo, messages)
	})

	// Register Bot. Command handlers are attached later, once the full
	// graph exists; the default handler resolves lazily for the same
	// reason (handler -> dispatcher -> client -> bot).
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)

		opts := []bot.Option{
			bot.WithServerURL(cfg.TelegramAPIURL),
			bot.WithAllowedUpdates(bot.AllowedUpdates{"message", "chat_member"}),
			bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
				handler := do.MustInvoke[*telegramHandler.Handler](i)
				handler.HandleUpdate(ctx, b, update)
			}),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return b, nil
	})

	// Register Dispatch Client
	do.Provide(injector, func(i do.Injector) (dispatch.Client, error) {
		b := do.MustInvoke[*bot.Bot](i)
		return dispatch.NewTelegramClient(b), nil
	})

	// Register Dispatch Service
	do.Provide(injector, func(i do.Injector) (*dispatch.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[dispatch.Client](i)
		registry := do.MustInvoke[*channelService.Registry](i)
		stats := do.MustInvoke[*statsService.Service](i)
		return dispatch.New(dispatch.Config{Workers: cfg.DispatchWorkers}, client, registry, stats), nil
	})

	// Register Dialogue Manager
	do.Provide(injector, func(i do.Injector) (*dialogueService.Manager, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*channelService.Registry](i)
		return dialogueService.New(
			dialogueService.Config{IdleTimeout: cfg.DialogueTimeout()},
			registry,
			cfg.IsAdmin,
		), nil
	})

	// Register Scheduler
	do.Provide(injector, func(i do.Injector) (*scheduler.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*channelService.Registry](i)
		client := do.MustInvoke[dispatch.Client](i)
		dispatcher := do.MustInvoke[*dispatch.Service](i)

		location, err := cfg.Location()
		if err != nil {
			return nil, err
		}

		sched := scheduler.New(location, registry, client, dispatcher)
		// Configuration edits rebuild the triggers without a restart
		registry.Subscribe(sched.Rebuild)
		return sched, nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*channelService.Registry](i)
		dialogue := do.MustInvoke[*dialogueService.Manager](i)
		dispatcher := do.MustInvoke[*dispatch.Service](i)
		client := do.MustInvoke[dispatch.Client](i)
		stats := do.MustInvoke[*statsService.Service](i)
		return telegramHandler.New(cfg, registry, dialogue, dispatcher, client, stats), nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		registry := do.MustInvoke[*channelService.Registry](i)
		stats := do.MustInvoke[*statsService.Service](i)
		return httpServer.New(cfg, registry, stats), nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx := context.Background()

	if sched, err := do.Invoke[*scheduler.Service](injector); err == nil && sched != nil {
		sched.Stop()
	}

	if dispatcher, err := do.Invoke[*dispatch.Service](injector); err == nil && dispatcher != nil {
		dispatcher.Stop()
	}

	if dialogue, err := do.Invoke[*dialogueService.Manager](injector); err == nil && dialogue != nil {
		dialogue.Stop()
	}

	if b, err := do.Invoke[*bot.Bot](injector); err == nil && b != nil {
		b.Close(ctx)
	}

	return nil
}
