// Package stats calculates summary figures about the network and planner
// usage and keeps the latest of each in the stats collection.
package stats

import (
	"context"
	"math"

	"github.com/travigo/routeplanner/pkg/ctdf"
)

type Catalogue interface {
	AllStops(ctx context.Context) ([]*ctdf.Stop, error)
	AllRoutes(ctx context.Context) ([]*ctdf.Route, error)
	AllBuses(ctx context.Context) ([]*ctdf.Bus, error)
}

type StopsStats struct {
	Total      int
	Active     int
	Accessible int

	ZoneTypes map[string]int
}

type RoutesStats struct {
	Total  int
	Active int

	AverageStops               float64
	AverageTravelTimeMinutes   float64
	TotalOperationalCostPerRun float64
}

type BusesStats struct {
	Total   int
	Active  int
	OnRoute int
}

type NetworkStats struct {
	Stops  StopsStats
	Routes RoutesStats
	Buses  BusesStats
}

func CalculateNetworkStats(stops []*ctdf.Stop, routes []*ctdf.Route, buses []*ctdf.Bus) NetworkStats {
	networkStats := NetworkStats{
		Stops: StopsStats{
			Total:     len(stops),
			ZoneTypes: map[string]int{},
		},
		Routes: RoutesStats{
			Total: len(routes),
		},
		Buses: BusesStats{
			Total: len(buses),
		},
	}

	for _, stop := range stops {
		if stop.Active {
			networkStats.Stops.Active++
		}
		if stop.Accessible {
			networkStats.Stops.Accessible++
		}
		if stop.ZoneType != "" {
			networkStats.Stops.ZoneTypes[stop.ZoneType]++
		}
	}

	totalStops := 0
	totalTravelTime := 0
	for _, route := range routes {
		if !route.Active {
			continue
		}

		networkStats.Routes.Active++
		totalStops += len(route.StopRefs)
		totalTravelTime += route.EstimatedTravelTimeMinutes
		networkStats.Routes.TotalOperationalCostPerRun += route.OperationalCost
	}
	if networkStats.Routes.Active > 0 {
		networkStats.Routes.AverageStops = round(float64(totalStops) / float64(networkStats.Routes.Active))
		networkStats.Routes.AverageTravelTimeMinutes = round(float64(totalTravelTime) / float64(networkStats.Routes.Active))
	}

	for _, bus := range buses {
		if !bus.Active {
			continue
		}

		networkStats.Buses.Active++
		if bus.CurrentRouteRef != "" {
			networkStats.Buses.OnRoute++
		}
	}

	return networkStats
}

func GetNetworkStats(ctx context.Context, catalogue Catalogue) (NetworkStats, error) {
	stops, err := catalogue.AllStops(ctx)
	if err != nil {
		return NetworkStats{}, err
	}
	routes, err := catalogue.AllRoutes(ctx)
	if err != nil {
		return NetworkStats{}, err
	}
	buses, err := catalogue.AllBuses(ctx)
	if err != nil {
		return NetworkStats{}, err
	}

	return CalculateNetworkStats(stops, routes, buses), nil
}

func round(value float64) float64 {
	return math.Round(value*100) / 100
}
