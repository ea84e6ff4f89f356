package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/nexonhq/nexon-bot/core/cmd"
	coreconfig "github.com/nexonhq/nexon-bot/core/config"
	"github.com/nexonhq/nexon-bot/core/logger"
	"github.com/nexonhq/nexon-bot/core/metrics"
	"github.com/nexonhq/nexon-bot/core/web"
	"github.com/nexonhq/nexon-bot/internal/bot"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return configCarrier{cfg: cfg}, nil
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.DiscordApp, error) {
			cfg := carrier.CoreConfig()
			if err := logger.InitLogger(cfg); err != nil {
				return nil, err
			}
			metrics.Init()
			return bot.NewApp(cfg), nil
		},
		RunWeb: func(ctx context.Context, cfg *coreconfig.Config) error {
			return web.NewServer(cfg.Web.Port).Run(ctx)
		},
	})
	if err != nil {
		log.Fatalf("nexon: %v", err)
	}
}
