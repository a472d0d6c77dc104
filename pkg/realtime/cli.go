package realtime

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/auth"
	"github.com/travigo/routeplanner/pkg/consumer"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/events"
	"github.com/travigo/routeplanner/pkg/notify"
	"github.com/travigo/routeplanner/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Live route updates for connected clients",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the realtime websocket server and update consumers",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8081",
					},
					&cli.StringFlag{
						Name:    "gtfsrt-feed",
						Usage:   "GTFS-RT feed to poll for vehicle positions and delays",
						EnvVars: []string{"TRAVIGO_GTFSRT_URL"},
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}
					if err := redis_client.Connect(); err != nil {
						return err
					}

					tokenValidator, err := auth.NewValidator()
					if err != nil {
						return err
					}

					notifyQueue, err := redis_client.QueueConnection.OpenQueue(notify.NotifyQueue)
					if err != nil {
						return err
					}

					hub := NewHub()

					redisConsumer := consumer.RedisConsumer{
						QueueName:       events.RouteUpdatesQueue,
						NumberConsumers: 2,
						BatchSize:       50,
						Timeout:         500 * time.Millisecond,
						Consumer: &UpdatesConsumer{
							Hub:           hub,
							Notifications: notify.NewNotifier(&notify.MongoSubscriptionStore{}),
							NotifyQueue:   notifyQueue,
						},
					}
					redisConsumer.Setup()

					ctx, cancel := context.WithCancel(context.Background())
					defer cancel()

					if feedURL := c.String("gtfsrt-feed"); feedURL != "" {
						publisher, err := events.NewPublisher()
						if err != nil {
							return err
						}

						network := database.NewTransitNetwork()
						poller := NewGTFSRealtimePoller(feedURL, &RouteUpdateService{
							Publisher: publisher,
							Delays:    NewDelayStore(redis_client.Client, network),
							Tracker:   network,
						})
						go poller.Run(ctx)
					}

					mux := http.NewServeMux()
					mux.Handle("/ws", NewWebsocketServer(hub, tokenValidator))
					server := &http.Server{Addr: c.String("listen"), Handler: mux}

					go func() {
						log.Info().Str("listen", server.Addr).Msg("Starting websocket server")
						if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
							log.Fatal().Err(err).Msg("Websocket server failed")
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

					cancel()
					server.Shutdown(context.Background())

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "cleaner",
				Usage: "run the queue cleaner for the realtime queues",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					go StartCleaner()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals

					return nil
				},
			},
		},
	}
}
