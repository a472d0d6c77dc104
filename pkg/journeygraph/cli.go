package journeygraph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/util"
	"github.com/urfave/cli/v2"
)

const defaultNeo4jURI = "neo4j://localhost"

func connect(c *cli.Context) (neo4j.DriverWithContext, error) {
	env := util.GetEnvironmentVariables()

	uri := defaultNeo4jURI
	if env["TRAVIGO_NEO4J_URI"] != "" {
		uri = env["TRAVIGO_NEO4J_URI"]
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(env["TRAVIGO_NEO4J_USERNAME"], env["TRAVIGO_NEO4J_PASSWORD"], ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(c.Context); err != nil {
		driver.Close(c.Context)
		return nil, err
	}

	return driver, nil
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "journeygraph",
		Usage: "Export the network into Neo4j for transfer analysis",
		Subcommands: []*cli.Command{
			{
				Name:  "export",
				Usage: "replace the graph with the current stops and routes",
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					driver, err := connect(c)
					if err != nil {
						return err
					}
					defer driver.Close(c.Context)

					network := database.NewTransitNetwork()

					stops, err := network.AllStops(c.Context)
					if err != nil {
						return err
					}
					routes, err := network.AllRoutes(c.Context)
					if err != nil {
						return err
					}

					return NewExporter(driver).Export(c.Context, stops, routes)
				},
			},
			{
				Name:      "transfers",
				Usage:     "list the stops shared by two routes",
				ArgsUsage: "<route> <route>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						return cli.Exit("expected two route identifiers", 1)
					}

					driver, err := connect(c)
					if err != nil {
						return err
					}
					defer driver.Close(c.Context)

					stopRefs, err := NewExporter(driver).TransferStops(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}

					for _, stopRef := range stopRefs {
						log.Info().Str("stop", stopRef).Msg("Transfer stop")
					}

					return nil
				},
			},
		},
	}
}
