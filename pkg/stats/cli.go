package stats

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/elastic_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Calculate network & planner statistics",
		Subcommands: []*cli.Command{
			{
				Name:  "calculate",
				Usage: "calculate and record the latest statistics",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}

					store := &Store{}
					now := time.Now()

					networkStats, err := GetNetworkStats(c.Context, database.NewTransitNetwork())
					if err != nil {
						return err
					}
					if err := store.Record(c.Context, &RecordStatsData{Type: TypeNetwork, Stats: networkStats, Timestamp: now}); err != nil {
						return err
					}

					tripPlanStats, err := GetTripPlanStats(c.Context)
					if errors.Is(err, ErrElasticsearchUnavailable) {
						log.Info().Msg("Skipping trip plan statistics")
						return nil
					} else if err != nil {
						return err
					}

					return store.Record(c.Context, &RecordStatsData{Type: TypeTripPlans, Stats: tripPlanStats, Timestamp: now})
				},
			},
		},
	}
}
