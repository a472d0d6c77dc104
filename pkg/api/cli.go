package api

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/api/routes"
	"github.com/travigo/routeplanner/pkg/auth"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/elastic_client"
	"github.com/travigo/routeplanner/pkg/events"
	"github.com/travigo/routeplanner/pkg/notify"
	"github.com/travigo/routeplanner/pkg/optimiser"
	"github.com/travigo/routeplanner/pkg/planner"
	"github.com/travigo/routeplanner/pkg/realtime"
	"github.com/travigo/routeplanner/pkg/redis_client"
	"github.com/travigo/routeplanner/pkg/routeanalysis"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"github.com/travigo/routeplanner/pkg/stats"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
	"github.com/travigo/routeplanner/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(false); err != nil {
						return err
					}

					env := util.GetEnvironmentVariables()

					metricsConfig, err := routemetrics.LoadConfig(env["TRAVIGO_METRICS_CONFIG"])
					if err != nil {
						return err
					}
					cacheExpiration, err := util.EnvironmentDuration(env, "TRAVIGO_ROUTE_CACHE_EXPIRATION", transitnetwork.DefaultCacheExpiration)
					if err != nil {
						return err
					}

					tokenValidator, err := auth.NewValidator()
					if err != nil {
						return err
					}

					publisher, err := events.NewPublisher()
					if err != nil {
						return err
					}

					mongoNetwork := database.NewTransitNetwork()
					network := transitnetwork.NewCached(mongoNetwork, redis_client.Client, cacheExpiration)
					calculator := routemetrics.NewCalculator(metricsConfig)
					delays := realtime.NewDelayStore(redis_client.Client, network)
					tripRequests := database.NewTripRequestStore()

					server := &Server{
						Network:       network,
						Planner:       planner.NewPlanner(network, calculator, delays),
						RouteAnalysis: routeanalysis.NewService(network, calculator, optimiser.NewOptimiser(), tripRequests),
						Realtime:      delays,
						RouteUpdates: &realtime.RouteUpdateService{
							Publisher: publisher,
							Delays:    delays,
							Tracker:   mongoNetwork,
						},
						Accounts: routes.AccountStores{
							TripRequests:  tripRequests,
							PushTargets:   &notify.MongoPushTargetStore{},
							Subscriptions: &notify.MongoSubscriptionStore{},
						},
						Stats:          &stats.Store{},
						TokenValidator: tokenValidator,
					}

					log.Info().Str("listen", c.String("listen")).Msg("Starting web api")

					defer elastic_client.WaitUntilQueueEmpty()

					return server.Listen(c.String("listen"))
				},
			},
		},
	}
}
