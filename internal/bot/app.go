package bot

import (
	"context"
	"time"

	"log/slog"

	coreconfig "github.com/nexonhq/nexon-bot/core/config"
	"github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/discord/middleware"
	dgrouter "github.com/nexonhq/nexon-bot/core/discord/router"
	"github.com/nexonhq/nexon-bot/core/discord/sender"
	"github.com/nexonhq/nexon-bot/core/logger"
	"github.com/nexonhq/nexon-bot/internal/post"
)

// App owns the assembled bot: domain core, command registry, gateway and
// dispatcher.
type App struct {
	cfg        *coreconfig.Config
	gw         *DiscordGateway
	store      *post.Store
	router     *post.Router
	dialogue   *post.Dialogue
	registry   *discord.Registry
	dispatcher *sender.Dispatcher
}

// NewApp assembles the bot from configuration.
func NewApp(cfg *coreconfig.Config) *App {
	gw := NewDiscordGateway()
	store := post.NewStore()
	router := post.NewRouter(cfg.Channels)
	site := post.NewWebsiteClient(
		cfg.Website.APIURL,
		time.Duration(cfg.Website.UploadTimeoutSeconds)*time.Second,
	)
	dispatcher := sender.NewDispatcher(sender.Options{})
	pub := post.NewPublisher(gw, router, site, dispatcher)
	dialogue := post.NewDialogue(store, gw, pub)

	registry := discord.NewRegistry(cfg.Discord.Prefix)
	cmds := NewCommands(dialogue, router, gw)
	registerCommands(registry, cmds, gw)

	return &App{
		cfg:        cfg,
		gw:         gw,
		store:      store,
		router:     router,
		dialogue:   dialogue,
		registry:   registry,
		dispatcher: dispatcher,
	}
}

func registerCommands(reg *discord.Registry, cmds *Commands, gw Gateway) {
	adminOpts := middleware.AdminOptions{
		IsAdmin: func(ctx context.Context, ev *discord.Event) (bool, error) {
			return gw.IsAdmin(ctx, ev.UserID, ev.ChannelID)
		},
		OnReject: cmds.RejectNonAdmin,
	}

	reg.RegisterCommand("post", discord.Command{
		Handler:     cmds.Post,
		Description: "Start creating a new post",
	})

	setChannel := discord.Command{
		Handler:     cmds.SetChannel,
		Description: "Set the target channel for a specific category",
		AdminOnly:   true,
	}
	setChannel.Handler = middleware.WithAdminCheck(adminOpts, setChannel)
	reg.RegisterCommand("setchannel", setChannel)

	reg.RegisterCommand("channels", discord.Command{
		Handler:     cmds.Channels,
		Description: "Show current channel mappings",
	})
}

func defaultMiddlewares(cfg *coreconfig.Config) []discord.Middleware {
	mws := []discord.Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
		if interval > 0 {
			mws = append(mws, discord.Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval: interval,
					// Reactions finish sessions; never throttle them.
					Exclude: map[discord.EventKind]struct{}{discord.KindReaction: {}},
				}),
			})
		}
	}

	mws = append(mws,
		discord.Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		discord.Middleware{Name: "metrics", Use: middleware.MetricsMiddleware},
	)

	return mws
}

// DiscordRunOptions builds the runtime options for the core runner.
func (a *App) DiscordRunOptions() (discord.RunOptions, error) {
	return discord.RunOptions{
		Config:          a.cfg,
		Registry:        a.registry,
		Dispatcher:      a.dispatcher,
		Middlewares:     defaultMiddlewares(a.cfg),
		MessageHandler:  dgrouter.MessageHandler(a.dialogue, a.registry, dgrouter.MessageOptions{}),
		ReactionHandler: dgrouter.ReactionHandler(a.dialogue),
		OnStart: func(ctx context.Context, rt discord.Runtime) error {
			a.gw.Bind(rt.Session)
			logger.Info(ctx, "app", "commands.registered",
				slog.String("status", "ok"),
				slog.String("prefix", a.cfg.Discord.Prefix),
				slog.Int("commands", len(a.registry.List(false))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, _ discord.Runtime) error {
			logger.Info(ctx, "app", "app.stop",
				slog.String("status", "ok"),
				slog.Int("open_sessions", a.store.Len()),
			)
			return nil
		},
	}, nil
}
