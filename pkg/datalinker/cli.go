package datalinker

import (
	"github.com/kr/pretty"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "data-linker",
		Usage: "Merge stops that refer to the same physical stop",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Link",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "distance",
						Usage: "Maximum distance in metres between stops that get merged",
						Value: DefaultMergeDistanceMeters,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print the merge groups without writing anything",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					plan, err := BuildPlan(c.Context, database.NewTransitNetwork(), c.Float64("distance"))
					if err != nil {
						return err
					}

					if c.Bool("dry-run") {
						for _, group := range plan.Groups {
							pretty.Println(group.Primary.PrimaryIdentifier, len(group.Duplicates))
						}
						return nil
					}

					return plan.Apply(c.Context)
				},
			},
		},
	}
}
