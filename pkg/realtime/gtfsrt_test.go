package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"google.golang.org/protobuf/proto"
)

func vehicleEntity(id string, routeRef string, busRef string, lat float32, lon float32) *gtfs.FeedEntity {
	return &gtfs.FeedEntity{
		Id: proto.String(id),
		Vehicle: &gtfs.VehiclePosition{
			Trip:     &gtfs.TripDescriptor{RouteId: proto.String(routeRef)},
			Vehicle:  &gtfs.VehicleDescriptor{Id: proto.String(busRef)},
			Position: &gtfs.Position{Latitude: proto.Float32(lat), Longitude: proto.Float32(lon)},
		},
	}
}

func tripDelayEntity(id string, routeRef string, stopDelaySeconds ...int32) *gtfs.FeedEntity {
	tripUpdate := &gtfs.TripUpdate{
		Trip: &gtfs.TripDescriptor{RouteId: proto.String(routeRef)},
	}
	for _, delay := range stopDelaySeconds {
		tripUpdate.StopTimeUpdate = append(tripUpdate.StopTimeUpdate, &gtfs.TripUpdate_StopTimeUpdate{
			Arrival: &gtfs.TripUpdate_StopTimeEvent{Delay: proto.Int32(delay)},
		})
	}

	return &gtfs.FeedEntity{Id: proto.String(id), TripUpdate: tripUpdate}
}

func testFeed(entities ...*gtfs.FeedEntity) *gtfs.FeedMessage {
	return &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: entities,
	}
}

func TestProcessFeed(t *testing.T) {
	assert := assert.New(t)

	publisher := &recordingPublisher{}
	poller := NewGTFSRealtimePoller("", &RouteUpdateService{Publisher: publisher})

	feed := testFeed(
		vehicleEntity("1", "R1", "B1", 51.5, -0.5),
		vehicleEntity("2", "", "B9", 51.5, -0.5),
		tripDelayEntity("3", "R1", 60, 430),
		tripDelayEntity("4", "R1", 120),
		tripDelayEntity("5", "R2", 30),
	)

	published := poller.Process(context.Background(), feed)
	assert.Equal(2, published)

	locations := publisher.eventsOfType(ctdf.EventTypeBusLocationUpdate)
	assert.Len(locations, 1)
	location := locations[0].Body.(ctdf.BusLocationUpdate)
	assert.Equal("B1", location.BusRef)
	assert.Equal(51.5, location.Latitude)
	assert.Equal(-0.5, location.Longitude)

	delays := publisher.eventsOfType(ctdf.EventTypeRouteDelayUpdate)
	assert.Len(delays, 1)
	delay := delays[0].Body.(ctdf.RouteDelayUpdate)
	assert.Equal("R1", delay.RouteRef)
	assert.Equal(7, delay.DelayMinutes)
	assert.Equal(gtfsRealtimeReason, delay.Reason)
}

func TestProcessFeedOnlyReportsChangedDelays(t *testing.T) {
	assert := assert.New(t)

	publisher := &recordingPublisher{}
	poller := NewGTFSRealtimePoller("", &RouteUpdateService{Publisher: publisher})

	poller.Process(context.Background(), testFeed(tripDelayEntity("1", "R1", 300)))
	poller.Process(context.Background(), testFeed(tripDelayEntity("1", "R1", 300)))
	assert.Len(publisher.eventsOfType(ctdf.EventTypeRouteDelayUpdate), 1)

	poller.Process(context.Background(), testFeed(tripDelayEntity("1", "R1", 0)))
	delays := publisher.eventsOfType(ctdf.EventTypeRouteDelayUpdate)
	assert.Len(delays, 2)
	assert.Equal(0, delays[1].Body.(ctdf.RouteDelayUpdate).DelayMinutes)
}

func TestProcessFeedKeepsDelayPastTTL(t *testing.T) {
	assert := assert.New(t)
	server := miniredis.RunT(t)
	ctx := context.Background()

	publisher := &recordingPublisher{}
	delays := testDelayStore(server, testNetwork())
	poller := NewGTFSRealtimePoller("", &RouteUpdateService{Publisher: publisher, Delays: delays})

	poller.Process(ctx, testFeed(tripDelayEntity("1", "R1", 600)))
	delay, err := delays.GetDelay(ctx, "R1")
	assert.Nil(err)
	assert.Equal(10, delay)

	server.FastForward(DefaultDelayTTL - time.Minute)
	poller.Process(ctx, testFeed(tripDelayEntity("1", "R1", 600)))
	server.FastForward(2 * time.Minute)

	delay, err = delays.GetDelay(ctx, "R1")
	assert.Nil(err)
	assert.Equal(10, delay)

	server.FastForward(DefaultDelayTTL)
	poller.Process(ctx, testFeed(tripDelayEntity("1", "R1", 600)))

	delay, err = delays.GetDelay(ctx, "R1")
	assert.Nil(err)
	assert.Equal(10, delay)
	assert.Len(publisher.eventsOfType(ctdf.EventTypeRouteDelayUpdate), 1)
}

func TestTripDelaySeconds(t *testing.T) {
	assert.Equal(t, 90, tripDelaySeconds(&gtfs.TripUpdate{Delay: proto.Int32(90)}))
	assert.Equal(t, 240, tripDelaySeconds(tripDelayEntity("1", "R1", 60, 240, 120).TripUpdate))
	assert.Equal(t, 0, tripDelaySeconds(tripDelayEntity("1", "R1", -60).TripUpdate))
}

func TestPollFeed(t *testing.T) {
	assert := assert.New(t)

	feedBytes, err := proto.Marshal(testFeed(vehicleEntity("1", "R3", "B4", 52.0, -1.0)))
	assert.Nil(err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(feedBytes)
	}))
	defer server.Close()

	publisher := &recordingPublisher{}
	poller := NewGTFSRealtimePoller(server.URL, &RouteUpdateService{Publisher: publisher})

	assert.Nil(poller.Poll(context.Background()))
	assert.Len(publisher.eventsOfType(ctdf.EventTypeBusLocationUpdate), 1)
}

func TestPollFeedPermanentFailure(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	poller := NewGTFSRealtimePoller(server.URL, &RouteUpdateService{Publisher: &recordingPublisher{}})

	assert.NotNil(t, poller.Poll(context.Background()))
	assert.Equal(t, 1, requests)
}
