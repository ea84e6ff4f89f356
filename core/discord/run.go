package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	coreconfig "github.com/nexonhq/nexon-bot/core/config"
	"github.com/nexonhq/nexon-bot/core/discord/sender"
	"github.com/nexonhq/nexon-bot/core/logger"
	"log/slog"
)

// Middleware describes a named global middleware applied to every event.
type Middleware struct {
	Name string
	Use  MiddlewareFunc
}

// RunOptions controls the behaviour of RunDiscord.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions sender.Options
	Dispatcher        *sender.Dispatcher

	Middlewares []Middleware

	// MessageHandler receives normalized message events after the middleware chain.
	MessageHandler HandlerFunc
	// ReactionHandler receives normalized reaction-add events after the middleware chain.
	ReactionHandler HandlerFunc

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Session    *discordgo.Session
	Dispatcher *sender.Dispatcher
	Registry   *Registry
}

// RunDiscord connects to the gateway and dispatches events until the provided
// context is done.
func RunDiscord(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("discord: nil config provided")
	}

	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry(cfg.Discord.Prefix)
	}

	buildStart := time.Now()
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return fmt.Errorf("discord: session initialization failed: %w", err)
	}
	session.Client = BuildHTTPClient()
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent
	buildTook := time.Since(buildStart)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = sender.NewDispatcher(opts.DispatcherOptions)
	}

	rt := Runtime{
		Session:    session,
		Dispatcher: dispatcher,
		Registry:   reg,
	}

	mws := make([]MiddlewareFunc, 0, len(opts.Middlewares))
	for _, mw := range opts.Middlewares {
		if mw.Use == nil {
			continue
		}
		mws = append(mws, mw.Use)
	}

	onMessage := opts.MessageHandler
	if onMessage != nil {
		onMessage = Chain(onMessage, mws...)
	}
	onReaction := opts.ReactionHandler
	if onReaction != nil {
		onReaction = Chain(onReaction, mws...)
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		username := ""
		if r.User != nil {
			username = r.User.Username
		}
		logger.Info(ctx, "dg", "gateway.ready",
			slog.String("status", "ok"),
			slog.String("username", username),
			slog.Int("guilds", len(r.Guilds)),
			slog.Duration("duration", logger.RoundMS(buildTook)),
		)
	})

	if onMessage != nil {
		session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
			ev := NewMessageEvent(s, m)
			if ev.FromBot {
				return
			}
			evCtx := ev.BuildContext(ctx)
			if err := onMessage(evCtx, ev); err != nil {
				logger.Error(evCtx, "dg", "event.handle.fail",
					slog.String("kind", "message"),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
			}
		})
	}

	if onReaction != nil {
		session.AddHandler(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
			ev := NewReactionEvent(s, r)
			if ev.FromBot {
				return
			}
			evCtx := ev.BuildContext(ctx)
			if err := onReaction(evCtx, ev); err != nil {
				logger.Error(evCtx, "dg", "event.handle.fail",
					slog.String("kind", "reaction"),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
			}
		})
	}

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			dispatcher.Close()
			return err
		}
	}

	if err := session.Open(); err != nil {
		dispatcher.Close()
		return fmt.Errorf("discord: gateway open failed: %w", err)
	}

	<-ctx.Done()
	runErr := ctx.Err()

	closeErr := session.Close()

	var stopErr error
	if opts.OnStop != nil {
		stopErr = opts.OnStop(context.Background(), rt)
	}

	dispatcher.Close()

	if stopErr != nil {
		return stopErr
	}
	if closeErr != nil {
		return closeErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}
