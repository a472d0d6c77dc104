package realtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

const DefaultDelayTTL = 30 * time.Minute

// DelayStore keeps the most recent reported delay for each route. Delays
// expire so a route drifts back to on time once reports stop.
type DelayStore struct {
	Client  *redis.Client
	Network transitnetwork.Network
	TTL     time.Duration
}

func NewDelayStore(client *redis.Client, network transitnetwork.Network) *DelayStore {
	return &DelayStore{
		Client:  client,
		Network: network,
		TTL:     DefaultDelayTTL,
	}
}

func delayKey(routeRef string) string {
	return fmt.Sprintf("routeplanner/delay/%s", routeRef)
}

func (d *DelayStore) SetDelay(ctx context.Context, routeRef string, delayMinutes int) error {
	if delayMinutes <= 0 {
		return d.Client.Del(ctx, delayKey(routeRef)).Err()
	}

	return d.Client.Set(ctx, delayKey(routeRef), delayMinutes, d.TTL).Err()
}

func (d *DelayStore) GetDelay(ctx context.Context, routeRef string) (int, error) {
	value, err := d.Client.Get(ctx, delayKey(routeRef)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	return strconv.Atoi(value)
}

// GetRealtimeUpdates reports every active bus on the route with the route's
// current delay. Buses without a known position report the origin.
func (d *DelayStore) GetRealtimeUpdates(ctx context.Context, routeRef string) ([]*ctdf.RealtimeUpdate, error) {
	buses, err := d.Network.GetBusesOnRoute(ctx, routeRef)
	if err != nil {
		return nil, err
	}

	delayMinutes, err := d.GetDelay(ctx, routeRef)
	if err != nil {
		log.Error().Err(err).Str("route", routeRef).Msg("Failed to read route delay")
		delayMinutes = 0
	}

	status := ctdf.RealtimeStatusOnTime
	if delayMinutes > 0 {
		status = ctdf.RealtimeStatusDelayed
	}

	now := time.Now()
	updates := make([]*ctdf.RealtimeUpdate, 0, len(buses))

	for _, bus := range buses {
		location := bus.CurrentLocation
		if location == nil {
			location = &ctdf.Location{Type: "Point", Coordinates: []float64{0, 0}}
		}

		lastUpdated := bus.LocationUpdated
		if lastUpdated.IsZero() {
			lastUpdated = now
		}

		updates = append(updates, &ctdf.RealtimeUpdate{
			RouteRef:        routeRef,
			BusRef:          bus.PrimaryIdentifier,
			CurrentLocation: location,
			DelayMinutes:    delayMinutes,
			LastUpdated:     lastUpdated,
			Status:          status,
		})
	}

	return updates, nil
}
