// Package journeygraph exports the network into Neo4j as (:Stop)-[:NEXT]->(:Stop)
// edges, one per consecutive pair of stops on a route.
package journeygraph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

const defaultDatabase = "neo4j"

type Edge struct {
	RouteRef       string
	OriginRef      string
	DestinationRef string
	Sequence       int
}

// RouteEdges links each stop on an active route to the next one.
func RouteEdges(route *ctdf.Route) []Edge {
	if !route.Active || len(route.StopRefs) < 2 {
		return nil
	}

	edges := make([]Edge, 0, len(route.StopRefs)-1)
	for i := 0; i < len(route.StopRefs)-1; i++ {
		edges = append(edges, Edge{
			RouteRef:       route.PrimaryIdentifier,
			OriginRef:      route.StopRefs[i],
			DestinationRef: route.StopRefs[i+1],
			Sequence:       i,
		})
	}

	return edges
}

func stopParameters(stop *ctdf.Stop) map[string]any {
	point := stop.Point()

	return map[string]any{
		"primaryidentifier": stop.PrimaryIdentifier,
		"primaryname":       stop.PrimaryName,
		"latitude":          point.Latitude,
		"longitude":         point.Longitude,
		"accessible":        stop.Accessible,
	}
}

func edgeParameters(edge Edge) map[string]any {
	return map[string]any{
		"origin":      edge.OriginRef,
		"destination": edge.DestinationRef,
		"route":       edge.RouteRef,
		"sequence":    edge.Sequence,
	}
}

type Exporter struct {
	Driver   neo4j.DriverWithContext
	Database string
}

func NewExporter(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{
		Driver:   driver,
		Database: defaultDatabase,
	}
}

// Export replaces the graph with the given stops and routes.
func (e *Exporter) Export(ctx context.Context, stops []*ctdf.Stop, routes []*ctdf.Route) error {
	session := e.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.Database})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, "MATCH (s:Stop) DETACH DELETE s", map[string]any{}); err != nil {
		return fmt.Errorf("clear graph: %w", err)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stop := range stops {
			_, err := tx.Run(
				ctx,
				`MERGE (s:Stop {primaryidentifier: $primaryidentifier})
				SET s.primaryname = $primaryname, s.latitude = $latitude, s.longitude = $longitude, s.accessible = $accessible`,
				stopParameters(stop),
			)
			if err != nil {
				return nil, err
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("create stops: %w", err)
	}

	edgeCount := 0
	for _, route := range routes {
		edges := RouteEdges(route)
		if len(edges) == 0 {
			continue
		}

		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			for _, edge := range edges {
				_, err := tx.Run(
					ctx,
					`MATCH (o:Stop {primaryidentifier: $origin})
					MATCH (d:Stop {primaryidentifier: $destination})
					MERGE (o)-[:NEXT {route: $route, sequence: $sequence}]->(d)`,
					edgeParameters(edge),
				)
				if err != nil {
					return nil, err
				}
			}

			return nil, nil
		})
		if err != nil {
			return fmt.Errorf("create edges for route %s: %w", route.PrimaryIdentifier, err)
		}

		edgeCount += len(edges)
	}

	log.Info().Int("stops", len(stops)).Int("routes", len(routes)).Int("edges", edgeCount).Msg("Exported journey graph")

	return nil
}

// TransferStops lists stops where both routes call.
func (e *Exporter) TransferStops(ctx context.Context, routeA string, routeB string) ([]string, error) {
	session := e.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.Database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(
			ctx,
			`MATCH (s:Stop)
			WHERE EXISTS { (s)-[:NEXT {route: $routeA}]-() } AND EXISTS { (s)-[:NEXT {route: $routeB}]-() }
			RETURN s.primaryidentifier AS primaryidentifier
			ORDER BY primaryidentifier`,
			map[string]any{"routeA": routeA, "routeB": routeB},
		)
		if err != nil {
			return nil, err
		}

		var stopRefs []string
		for records.Next(ctx) {
			if stopRef, ok := records.Record().Get("primaryidentifier"); ok {
				stopRefs = append(stopRefs, stopRef.(string))
			}
		}

		return stopRefs, records.Err()
	})
	if err != nil {
		return nil, err
	}

	stopRefs, _ := result.([]string)
	return stopRefs, nil
}
