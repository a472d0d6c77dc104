// Package events carries route update events between the services over a
// redis backed rmq queue.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/redis_client"
)

const RouteUpdatesQueue = "route-updates-queue"

// Queue is the publishing side of an rmq.Queue.
type Queue interface {
	PublishBytes(payload ...[]byte) error
}

type Publisher struct {
	Queue Queue
}

func NewPublisher() (*Publisher, error) {
	queue, err := redis_client.QueueConnection.OpenQueue(RouteUpdatesQueue)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", RouteUpdatesQueue, err)
	}

	return &Publisher{Queue: queue}, nil
}

func (p *Publisher) Publish(event *ctdf.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	return p.Queue.PublishBytes(eventBytes)
}

// Decode reads an event published by Publisher. The body is left as a JSON
// object map.
func Decode(payload []byte) (*ctdf.Event, error) {
	var event ctdf.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	return &event, nil
}
