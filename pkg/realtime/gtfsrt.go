package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
)

const (
	DefaultPollInterval = 30 * time.Second
	gtfsRealtimeReason  = "Reported by realtime feed"
)

// GTFSRealtimePoller reads a GTFS-RT feed and turns vehicle positions and
// trip delays into route updates.
type GTFSRealtimePoller struct {
	FeedURL    string
	Interval   time.Duration
	HTTPClient *http.Client
	Updates    *RouteUpdateService

	// MaxRetries bounds the retries of a single poll.
	MaxRetries uint64

	lastDelays map[string]int
}

func NewGTFSRealtimePoller(feedURL string, updates *RouteUpdateService) *GTFSRealtimePoller {
	return &GTFSRealtimePoller{
		FeedURL:    feedURL,
		Interval:   DefaultPollInterval,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Updates:    updates,
		MaxRetries: 5,
		lastDelays: map[string]int{},
	}
}

func (p *GTFSRealtimePoller) Run(ctx context.Context) error {
	log.Info().Str("feed", p.FeedURL).Str("interval", p.Interval.String()).Msg("Starting GTFS-RT poller")

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			log.Error().Err(err).Str("feed", p.FeedURL).Msg("Failed to poll GTFS-RT feed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *GTFSRealtimePoller) Poll(ctx context.Context) error {
	var feed *gtfs.FeedMessage

	retryBackoff := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.MaxRetries), ctx)

	err := backoff.Retry(func() error {
		var err error
		feed, err = p.fetch(ctx)
		return err
	}, retryBackoff)
	if err != nil {
		return err
	}

	published := p.Process(ctx, feed)
	log.Info().Int("entities", len(feed.Entity)).Int("published", published).Msg("Processed GTFS-RT feed")

	return nil
}

func (p *GTFSRealtimePoller) fetch(ctx context.Context) (*gtfs.FeedMessage, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, p.FeedURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	response, err := p.HTTPClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", response.StatusCode)
		if response.StatusCode >= 400 && response.StatusCode < 500 && response.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse GTFS-RT protobuf: %w", err))
	}

	return feed, nil
}

// Process publishes a location update per positioned vehicle and a delay
// update per route whose worst delay changed since the previous feed. It
// returns the number of updates published.
func (p *GTFSRealtimePoller) Process(ctx context.Context, feed *gtfs.FeedMessage) int {
	if p.lastDelays == nil {
		p.lastDelays = map[string]int{}
	}

	published := 0
	routeDelays := map[string]int{}

	for _, entity := range feed.Entity {
		if vehiclePosition := entity.GetVehicle(); vehiclePosition != nil {
			routeRef := vehiclePosition.GetTrip().GetRouteId()
			busRef := vehiclePosition.GetVehicle().GetId()
			position := vehiclePosition.GetPosition()

			if routeRef != "" && busRef != "" && position != nil {
				err := p.Updates.NotifyBusLocationUpdate(ctx, routeRef, busRef, float64(position.GetLatitude()), float64(position.GetLongitude()))
				if err != nil {
					log.Error().Err(err).Str("bus", busRef).Msg("Failed to publish bus location")
				} else {
					published++
				}
			}
		}

		if tripUpdate := entity.GetTripUpdate(); tripUpdate != nil {
			routeRef := tripUpdate.GetTrip().GetRouteId()
			if routeRef == "" {
				continue
			}

			delayMinutes := max(tripDelaySeconds(tripUpdate)/60, 0)
			if current, ok := routeDelays[routeRef]; !ok || delayMinutes > current {
				routeDelays[routeRef] = delayMinutes
			}
		}
	}

	for routeRef, delayMinutes := range routeDelays {
		// unseen routes count as on time
		if p.lastDelays[routeRef] == delayMinutes {
			p.refreshDelay(ctx, routeRef, delayMinutes)
			continue
		}

		if err := p.Updates.NotifyRouteDelayUpdate(ctx, routeRef, delayMinutes, gtfsRealtimeReason); err != nil {
			log.Error().Err(err).Str("route", routeRef).Msg("Failed to publish route delay")
			continue
		}

		p.lastDelays[routeRef] = delayMinutes
		published++
	}

	return published
}

// refreshDelay rewrites an unchanged delay so it outlives the store TTL for as
// long as the feed keeps reporting it.
func (p *GTFSRealtimePoller) refreshDelay(ctx context.Context, routeRef string, delayMinutes int) {
	if p.Updates.Delays == nil || delayMinutes <= 0 {
		return
	}

	if err := p.Updates.Delays.SetDelay(ctx, routeRef, delayMinutes); err != nil {
		log.Error().Err(err).Str("route", routeRef).Msg("Failed to refresh route delay")
	}
}

// tripDelaySeconds prefers the trip level delay and otherwise takes the
// largest stop level delay.
func tripDelaySeconds(tripUpdate *gtfs.TripUpdate) int {
	if tripUpdate.Delay != nil {
		return int(tripUpdate.GetDelay())
	}

	delay := 0
	for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
		if arrivalDelay := int(stopTimeUpdate.GetArrival().GetDelay()); arrivalDelay > delay {
			delay = arrivalDelay
		}
		if departureDelay := int(stopTimeUpdate.GetDeparture().GetDelay()); departureDelay > delay {
			delay = departureDelay
		}
	}

	return delay
}
