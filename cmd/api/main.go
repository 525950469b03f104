// Command api serves the students and scores HTTP API.
package main

import (
	"context"
	"log"

	"github.com/examscores/scorebot/core/bootstrap"
	corecmd "github.com/examscores/scorebot/core/cmd"
	coreconfig "github.com/examscores/scorebot/core/config"
	"github.com/examscores/scorebot/internal/api"
	"github.com/examscores/scorebot/internal/service"
	"github.com/examscores/scorebot/internal/settings"
	"github.com/examscores/scorebot/internal/storage"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return settings.Load(path, coreconfig.Options{})
		},
		Bootstrap: func(carrier corecmd.ConfigCarrier) (corecmd.App, error) {
			cfg := carrier.(*settings.Settings)
			res, err := bootstrap.Run(bootstrap.Options{
				Config:     cfg.CoreConfig(),
				Database:   cfg.Database,
				Migrations: storage.Migrations(),
			})
			if err != nil {
				return nil, err
			}

			store := storage.New(res.DB)
			v := service.NewValidator()
			srv := api.NewServer(cfg.HTTP, api.NewRouter(api.Deps{
				Students: service.NewStudents(store, v),
				Scores:   service.NewScores(store, v),
				Health:   store,
			}))
			return corecmd.AppFunc(func(ctx context.Context) error {
				defer res.DB.Close()
				return srv.Run(ctx)
			}), nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
