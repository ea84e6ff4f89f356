package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/nexonhq/nexon-bot/core/config"
	corediscord "github.com/nexonhq/nexon-bot/core/discord"
	"github.com/nexonhq/nexon-bot/core/logger"

	"log/slog"
)

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// DiscordApp is the minimal interface required to run the bot.
type DiscordApp interface {
	DiscordRunOptions() (corediscord.RunOptions, error)
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (DiscordApp, error)

	ShutdownLogger func() error
	RunDiscord     func(ctx context.Context, opts corediscord.RunOptions) error
	// RunWeb starts the liveness web server; a failure cancels the bot.
	RunWeb func(ctx context.Context, cfg *coreconfig.Config) error
}

// Run loads configuration, bootstraps the app, and starts the bot runtime
// alongside the liveness server.
func Run(opts Options) error {
	if opts.LoadConfig == nil {
		return fmt.Errorf("cmd: LoadConfig is required")
	}
	if opts.Bootstrap == nil {
		return fmt.Errorf("cmd: Bootstrap is required")
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := opts.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return fmt.Errorf("cmd: loaded config is missing core configuration")
	}

	application, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := application.DiscordRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: discord options build failed: %w", err)
	}

	startedAt := time.Now()
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt corediscord.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.L.With("component", "app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}

	prevStop := runOpts.OnStop
	runOpts.OnStop = func(ctx context.Context, rt corediscord.Runtime) error {
		logger.L.With("component", "app").Info("shutting down...",
			slog.String("event", "shutdown"),
		)
		if prevStop != nil {
			return prevStop(ctx, rt)
		}
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if opts.RunWeb != nil {
		go func() {
			if err := opts.RunWeb(ctx, cfg.CoreConfig()); err != nil {
				logger.Error(ctx, "web", "web.fail",
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
				cancel()
			}
		}()
	}

	run := opts.RunDiscord
	if run == nil {
		run = corediscord.RunDiscord
	}

	return run(ctx, runOpts)
}
