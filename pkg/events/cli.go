package events

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/consumer"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Inspect the route update event queue",
		Subcommands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "print route update events as they arrive",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					redisConsumer := consumer.RedisConsumer{
						QueueName:       RouteUpdatesQueue,
						NumberConsumers: 1,
						BatchSize:       20,
						Timeout:         2 * time.Second,
						Consumer:        NewTailBatchConsumer(),
					}
					redisConsumer.Setup()

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
			{
				Name:  "test-event",
				Usage: "publish a test system alert",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "message",
						Value: "This is a test alert",
					},
				},
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					publisher, err := NewPublisher()
					if err != nil {
						return err
					}

					event := &ctdf.Event{
						Type: ctdf.EventTypeSystemAlert,
						Body: ctdf.SystemAlert{
							Message:   c.String("message"),
							AlertType: "info",
							Timestamp: time.Now(),
						},
					}

					if err := publisher.Publish(event); err != nil {
						return err
					}

					log.Info().Str("type", string(event.Type)).Msg("Published test event")

					return nil
				},
			},
		},
	}
}
