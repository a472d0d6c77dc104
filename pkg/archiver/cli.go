package archiver

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "archiver",
		Usage: "Archives old trip requests",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "archive and delete trip requests past the retention period",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "output-directory",
						Value: os.TempDir(),
					},
					&cli.DurationFlag{
						Name:  "retention",
						Value: DefaultRetention,
					},
					&cli.StringFlag{
						Name:    "cloud-bucket",
						Usage:   "upload the bundle to this Cloud Storage bucket",
						EnvVars: []string{"TRAVIGO_ARCHIVE_BUCKET"},
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					archiver := &Archiver{
						Store:           database.NewTripRequestStore(),
						OutputDirectory: c.String("output-directory"),
						Retention:       c.Duration("retention"),
					}
					if bucket := c.String("cloud-bucket"); bucket != "" {
						archiver.Uploader = &GCSUploader{BucketName: bucket}
					}

					result, err := archiver.Perform(context.Background())
					if err != nil {
						return err
					}

					log.Info().Int("archived", result.Archived).Int("deleted", result.Deleted).Msg("Archive complete")

					return nil
				},
			},
		},
	}
}
