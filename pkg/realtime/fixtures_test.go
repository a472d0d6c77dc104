package realtime

import (
	"errors"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

type recordingPublisher struct {
	lock   sync.Mutex
	events []*ctdf.Event
	err    error
}

func (r *recordingPublisher) Publish(event *ctdf.Event) error {
	if r.err != nil {
		return r.err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.events = append(r.events, event)

	return nil
}

func (r *recordingPublisher) eventsOfType(eventType ctdf.EventType) []*ctdf.Event {
	r.lock.Lock()
	defer r.lock.Unlock()

	var matching []*ctdf.Event
	for _, event := range r.events {
		if event.Type == eventType {
			matching = append(matching, event)
		}
	}
	return matching
}

type recordingQueue struct {
	payloads [][]byte
}

func (r *recordingQueue) PublishBytes(payload ...[]byte) error {
	r.payloads = append(r.payloads, payload...)
	return nil
}

var errPublish = errors.New("queue unavailable")

func testNetwork() *transitnetwork.Memory {
	stop := &ctdf.Stop{PrimaryIdentifier: "S1", Location: ctdf.NewLocation(geo.NewPoint(51.5, -0.1)), Active: true}

	return transitnetwork.NewMemory(
		[]*ctdf.Stop{stop},
		[]*ctdf.Route{{PrimaryIdentifier: "R1", StopRefs: []string{"S1"}, Active: true}},
		[]*ctdf.Bus{
			{PrimaryIdentifier: "B1", CurrentRouteRef: "R1", Active: true, CurrentLocation: ctdf.NewLocation(geo.NewPoint(51.5, -0.1))},
			{PrimaryIdentifier: "B2", CurrentRouteRef: "R1", Active: true},
			{PrimaryIdentifier: "B3", CurrentRouteRef: "R1", Active: false},
		},
	)
}

func testDelayStore(server *miniredis.Miniredis, network transitnetwork.Network) *DelayStore {
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	return NewDelayStore(client, network)
}
