package planner

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/elastic_client"
)

type TripPlanElasticEvent struct {
	Timestamp time.Time

	Origin      ctdf.Location
	Destination ctdf.Location
	Objective   ctdf.Objective

	ItineraryCount  int
	Found           bool
	FastestMinutes  int
	FewestTransfers int
}

func NewTripPlanElasticEvent(request *ctdf.TripPlanRequest, itineraries []*ctdf.Itinerary, timestamp time.Time) *TripPlanElasticEvent {
	event := &TripPlanElasticEvent{
		Timestamp:      timestamp,
		Origin:         *ctdf.NewLocation(request.Origin),
		Destination:    *ctdf.NewLocation(request.Destination),
		Objective:      request.Preferences.Objective,
		ItineraryCount: len(itineraries),
		Found:          len(itineraries) > 0,
	}

	for i, itinerary := range itineraries {
		if i == 0 || itinerary.TotalTravelTimeMinutes < event.FastestMinutes {
			event.FastestMinutes = itinerary.TotalTravelTimeMinutes
		}
		if i == 0 || itinerary.TransferCount < event.FewestTransfers {
			event.FewestTransfers = itinerary.TransferCount
		}
	}

	return event
}

// IndexTripPlan records the outcome of a search in the monthly trip plan index.
func IndexTripPlan(request *ctdf.TripPlanRequest, itineraries []*ctdf.Itinerary) {
	if elastic_client.Client == nil {
		return
	}

	now := time.Now()
	eventBytes, err := json.Marshal(NewTripPlanElasticEvent(request, itineraries, now))
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode trip plan event")
		return
	}

	elastic_client.IndexRequest(elastic_client.MonthlyIndex(elastic_client.TripPlansIndexPrefix, now), bytes.NewReader(eventBytes))
}
