package realtime

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

const DefaultAlertType = "info"

// EventPublisher is satisfied by *events.Publisher.
type EventPublisher interface {
	Publish(event *ctdf.Event) error
}

// RouteUpdateService turns operational updates into route events. Events are
// published to the updates queue and fanned out to clients by UpdatesConsumer.
type RouteUpdateService struct {
	Publisher EventPublisher
	Delays    *DelayStore
	Tracker   transitnetwork.BusTracker
}

func (s *RouteUpdateService) NotifyBusLocationUpdate(ctx context.Context, routeRef string, busRef string, latitude float64, longitude float64) error {
	if s.Tracker != nil {
		if err := s.Tracker.UpdateBusLocation(ctx, busRef, routeRef, geo.NewPoint(latitude, longitude)); err != nil {
			log.Error().Err(err).Str("bus", busRef).Msg("Failed to store bus location")
		}
	}

	timestamp := time.Now()

	err := s.Publisher.Publish(&ctdf.Event{
		Type:      ctdf.EventTypeBusLocationUpdate,
		Timestamp: timestamp,
		Targets:   []string{RouteGroup(routeRef), GroupCityManagers},
		Body: ctdf.BusLocationUpdate{
			RouteRef:  routeRef,
			BusRef:    busRef,
			Latitude:  latitude,
			Longitude: longitude,
			Timestamp: timestamp,
		},
	})
	if err != nil {
		return err
	}

	log.Debug().Str("route", routeRef).Str("bus", busRef).Msg("Bus location update sent")

	return nil
}

func (s *RouteUpdateService) NotifyRouteDelayUpdate(ctx context.Context, routeRef string, delayMinutes int, reason string) error {
	if s.Delays != nil {
		if err := s.Delays.SetDelay(ctx, routeRef, delayMinutes); err != nil {
			log.Error().Err(err).Str("route", routeRef).Msg("Failed to record route delay")
		}
	}

	timestamp := time.Now()

	err := s.Publisher.Publish(&ctdf.Event{
		Type:      ctdf.EventTypeRouteDelayUpdate,
		Timestamp: timestamp,
		Targets:   []string{RouteGroup(routeRef), GroupCityManagers},
		Body: ctdf.RouteDelayUpdate{
			RouteRef:     routeRef,
			DelayMinutes: delayMinutes,
			Reason:       reason,
			Timestamp:    timestamp,
		},
	})
	if err != nil {
		return err
	}

	log.Info().Str("route", routeRef).Int("delay", delayMinutes).Str("reason", reason).Msg("Route delay update sent")

	return nil
}

func (s *RouteUpdateService) NotifyRouteModified(ctx context.Context, routeRef string, modificationType string) error {
	timestamp := time.Now()

	err := s.Publisher.Publish(&ctdf.Event{
		Type:      ctdf.EventTypeRouteModified,
		Timestamp: timestamp,
		Targets:   []string{GroupTravellers, GroupCityManagers},
		Body: ctdf.RouteModified{
			RouteRef:         routeRef,
			ModificationType: modificationType,
			Timestamp:        timestamp,
		},
	})
	if err != nil {
		return err
	}

	log.Info().Str("route", routeRef).Str("modification", modificationType).Msg("Route modification notification sent")

	return nil
}

// NotifySystemAlert goes to every connected client.
func (s *RouteUpdateService) NotifySystemAlert(ctx context.Context, message string, alertType string) error {
	if alertType == "" {
		alertType = DefaultAlertType
	}

	timestamp := time.Now()

	err := s.Publisher.Publish(&ctdf.Event{
		Type:      ctdf.EventTypeSystemAlert,
		Timestamp: timestamp,
		Body: ctdf.SystemAlert{
			Message:   message,
			AlertType: alertType,
			Timestamp: timestamp,
		},
	})
	if err != nil {
		return err
	}

	log.Info().Str("message", message).Str("type", alertType).Msg("System alert sent to all clients")

	return nil
}
