// Command bot runs the exam scores Telegram bot against the scores API.
package main

import (
	"log"
	"time"

	corecmd "github.com/examscores/scorebot/core/cmd"
	coreconfig "github.com/examscores/scorebot/core/config"
	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/internal/apiclient"
	"github.com/examscores/scorebot/internal/bot"
)

type botConfig struct{ *coreconfig.Config }

func (c botConfig) CoreConfig() *coreconfig.Config { return c.Config }

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path, coreconfig.Options{RequireTelegram: true})
			if err != nil {
				return nil, err
			}
			return botConfig{cfg}, nil
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.App, error) {
			cfg := carrier.CoreConfig()
			if err := logger.InitLogger(cfg); err != nil {
				return nil, err
			}
			client := apiclient.New(cfg.API.URL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
			return bot.NewApp(cfg, client)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
