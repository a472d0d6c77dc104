package indexer

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/elastic_client"
	"github.com/travigo/routeplanner/pkg/optimiser"
	"github.com/travigo/routeplanner/pkg/routeanalysis"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"github.com/travigo/routeplanner/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "indexer",
		Usage: "Indexes data into Elasticsearch",
		Before: func(c *cli.Context) error {
			if err := database.Connect(); err != nil {
				return err
			}
			return elastic_client.Connect(true)
		},
		Subcommands: []*cli.Command{
			{
				Name:  "stops",
				Usage: "do an index of the Stops",
				Action: func(c *cli.Context) error {
					ctx := context.Background()

					indexName, err := IndexStops(ctx, database.NewTransitNetwork())
					if err != nil {
						return err
					}

					elastic_client.WaitUntilQueueEmpty()
					log.Info().Msg("Index queue emptied")

					return DeleteOldStopIndexes(ctx, indexName)
				},
			},
			{
				Name:  "routes",
				Usage: "snapshot the analysis of every active route",
				Action: func(c *cli.Context) error {
					metricsConfig, err := routemetrics.LoadConfig(util.GetEnvironmentVariables()["TRAVIGO_METRICS_CONFIG"])
					if err != nil {
						return err
					}

					network := database.NewTransitNetwork()
					service := routeanalysis.NewService(network, routemetrics.NewCalculator(metricsConfig), optimiser.NewOptimiser(), database.NewTripRequestStore())

					if _, err := IndexRouteAnalysis(context.Background(), network, service); err != nil {
						return err
					}

					elastic_client.WaitUntilQueueEmpty()
					log.Info().Msg("Index queue emptied")

					return nil
				},
			},
		},
	}
}
