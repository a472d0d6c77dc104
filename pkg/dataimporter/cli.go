package dataimporter

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/dataimporter/insertrecords"
	"github.com/urfave/cli/v2"
)

func fileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Usage:    "CSV file to import",
		Required: true,
	}
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-importer",
		Usage: "Import stops, routes and buses into the database",
		Before: func(c *cli.Context) error {
			return database.Connect()
		},
		Subcommands: []*cli.Command{
			{
				Name:  "stops",
				Usage: "import stops (id,name,lat,lon,easting,northing,zone,accessible,active)",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					file, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer file.Close()

					stops, err := ParseStops(file, time.Now())
					if err != nil {
						return err
					}

					_, err = ImportStops(c.Context, stops)
					return err
				},
			},
			{
				Name:  "routes",
				Usage: "import routes (id,code,name,stops,travel_time,cost,active)",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					file, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer file.Close()

					routes, err := ParseRoutes(file, time.Now())
					if err != nil {
						return err
					}

					_, err = ImportRoutes(c.Context, routes)
					return err
				},
			},
			{
				Name:  "buses",
				Usage: "import buses (id,ref,capacity,type,route,active)",
				Flags: []cli.Flag{fileFlag()},
				Action: func(c *cli.Context) error {
					file, err := os.Open(c.String("file"))
					if err != nil {
						return err
					}
					defer file.Close()

					buses, err := ParseBuses(file)
					if err != nil {
						return err
					}

					_, err = ImportBuses(c.Context, buses)
					return err
				},
			},
			{
				Name:  "insert-records",
				Usage: "upsert the YAML record definitions in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Value: "data/insert-records/",
					},
				},
				Action: func(c *cli.Context) error {
					count, err := insertrecords.Insert(c.Context, c.String("dir"))
					if err != nil {
						return err
					}

					log.Info().Int("records", count).Msg("Inserted records")

					return nil
				},
			},
		},
	}
}
