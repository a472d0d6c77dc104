package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/api"
	"github.com/travigo/routeplanner/pkg/archiver"
	"github.com/travigo/routeplanner/pkg/dataimporter"
	"github.com/travigo/routeplanner/pkg/datalinker"
	"github.com/travigo/routeplanner/pkg/dbwatch"
	"github.com/travigo/routeplanner/pkg/events"
	"github.com/travigo/routeplanner/pkg/indexer"
	"github.com/travigo/routeplanner/pkg/journeygraph"
	"github.com/travigo/routeplanner/pkg/notify"
	"github.com/travigo/routeplanner/pkg/planner"
	"github.com/travigo/routeplanner/pkg/realtime"
	"github.com/travigo/routeplanner/pkg/stats"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TRAVIGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRAVIGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "routeplanner",
		Description: "Single binary for the route planner - runs all the services",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			realtime.RegisterCLI(),
			notify.RegisterCLI(),
			events.RegisterCLI(),
			dataimporter.RegisterCLI(),
			datalinker.RegisterCLI(),
			journeygraph.RegisterCLI(),
			planner.RegisterCLI(),
			dbwatch.RegisterCLI(),
			indexer.RegisterCLI(),
			archiver.RegisterCLI(),
			stats.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
