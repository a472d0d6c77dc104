package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/elastic_client"
)

// RouteAnalyser is satisfied by *routeanalysis.Service.
type RouteAnalyser interface {
	AnalyzeRoute(ctx context.Context, routeRef string) (*ctdf.RouteAnalysis, error)
}

type RouteAnalysisDocument struct {
	Timestamp time.Time

	RouteRef  string
	RouteCode string
	RouteName string
	StopCount int

	EfficiencyScore         float64
	CoverageScore           float64
	CostPerKm               float64
	AveragePassengersPerDay int
	SuggestionCount         int
}

func NewRouteAnalysisDocument(route *ctdf.Route, analysis *ctdf.RouteAnalysis, timestamp time.Time) *RouteAnalysisDocument {
	return &RouteAnalysisDocument{
		Timestamp:               timestamp,
		RouteRef:                route.PrimaryIdentifier,
		RouteCode:               route.Code,
		RouteName:               route.Name,
		StopCount:               len(route.StopRefs),
		EfficiencyScore:         analysis.EfficiencyScore,
		CoverageScore:           analysis.CoverageScore,
		CostPerKm:               analysis.CostPerKm,
		AveragePassengersPerDay: analysis.AveragePassengersPerDay,
		SuggestionCount:         len(analysis.ImprovementSuggestions),
	}
}

// IndexRouteAnalysis appends a snapshot of every active route's analysis to
// the monthly route analysis index. Routes that fail analysis are skipped.
func IndexRouteAnalysis(ctx context.Context, catalogue Catalogue, analyser RouteAnalyser) (int, error) {
	routes, err := catalogue.AllRoutes(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	indexName := elastic_client.MonthlyIndex(elastic_client.RouteAnalysisIndexPrefix, now)

	indexed := 0
	for _, route := range routes {
		if !route.Active {
			continue
		}

		analysis, err := analyser.AnalyzeRoute(ctx, route.PrimaryIdentifier)
		if err != nil {
			log.Error().Err(err).Str("route", route.PrimaryIdentifier).Msg("Failed to analyse route")
			continue
		}

		documentBytes, err := json.Marshal(NewRouteAnalysisDocument(route, analysis, now))
		if err != nil {
			log.Error().Err(err).Str("route", route.PrimaryIdentifier).Msg("Failed to encode route analysis")
			continue
		}

		elastic_client.IndexRequest(indexName, bytes.NewReader(documentBytes))
		indexed++
	}

	log.Info().Int("routes", indexed).Str("index", indexName).Msg("Sent route analysis to queue")

	return indexed, nil
}
