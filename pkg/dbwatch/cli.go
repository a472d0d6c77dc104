package dbwatch

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/events"
	"github.com/travigo/routeplanner/pkg/realtime"
	"github.com/travigo/routeplanner/pkg/redis_client"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "dbwatch",
		Usage: "Watches the database and raises events",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run events server",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					publisher, err := events.NewPublisher()
					if err != nil {
						return err
					}

					log.Info().Msg("Starting dbwatch server")

					ctx, cancel := context.WithCancel(context.Background())
					defer cancel()

					routesWatch := &RoutesWatch{
						Notifier: &realtime.RouteUpdateService{Publisher: publisher},
						Cache:    transitnetwork.NewCached(database.NewTransitNetwork(), redis_client.Client, transitnetwork.DefaultCacheExpiration),
					}
					go func() {
						if err := routesWatch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
							log.Fatal().Err(err).Msg("Failed to watch routes collection")
						}
					}()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					return nil
				},
			},
		},
	}
}
