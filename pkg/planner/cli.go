package planner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/routemetrics"
	"github.com/travigo/routeplanner/pkg/util"
	"github.com/urfave/cli/v2"
)

// parseCoordinates reads "latitude,longitude".
func parseCoordinates(value string) (geo.Point, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("expected latitude,longitude but got %q", value)
	}

	latitude, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, err
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, err
	}

	return geo.NewPoint(latitude, longitude), nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "planner",
		Usage: "Debug tools for the trip planner",
		Subcommands: []*cli.Command{
			{
				Name:  "plan",
				Usage: "plan a trip against the live network and print the itineraries",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "origin",
						Usage:    "origin as latitude,longitude",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "destination",
						Usage:    "destination as latitude,longitude",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "objective",
						Value: string(ctdf.ObjectiveFastest),
					},
					&cli.Float64Flag{
						Name:  "max-walk",
						Value: ctdf.DefaultMaxWalkingDistanceMeters,
					},
				},
				Action: func(c *cli.Context) error {
					origin, err := parseCoordinates(c.String("origin"))
					if err != nil {
						return err
					}
					destination, err := parseCoordinates(c.String("destination"))
					if err != nil {
						return err
					}

					if err := database.Connect(); err != nil {
						return err
					}

					metricsConfig, err := routemetrics.LoadConfig(util.GetEnvironmentVariables()["TRAVIGO_METRICS_CONFIG"])
					if err != nil {
						return err
					}

					tripPlanner := NewPlanner(database.NewTransitNetwork(), routemetrics.NewCalculator(metricsConfig), nil)

					itineraries := tripPlanner.PlanTrip(context.Background(), ctdf.TripPlanRequest{
						Origin:        origin,
						Destination:   destination,
						DepartureTime: time.Now(),
						Preferences: ctdf.Preferences{
							MaxWalkingDistanceMeters: c.Float64("max-walk"),
							Objective:                ctdf.Objective(c.String("objective")),
						},
					})

					log.Info().Int("itineraries", len(itineraries)).Msg("Trip planned")
					pretty.Println(itineraries)

					return nil
				},
			},
		},
	}
}
