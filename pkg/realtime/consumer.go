package realtime

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/events"
)

// NotificationSource is satisfied by *notify.Notifier.
type NotificationSource interface {
	NotificationsForEvent(ctx context.Context, event *ctdf.Event) ([]ctdf.Notification, error)
}

// UpdatesConsumer fans route update events out to the hub and queues push
// notifications for subscribed users.
type UpdatesConsumer struct {
	Hub           *Hub
	Notifications NotificationSource
	NotifyQueue   events.Queue
}

func (c *UpdatesConsumer) Consume(batch rmq.Deliveries) {
	for _, payload := range batch.Payloads() {
		c.handle(context.Background(), []byte(payload))
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack route update")
		}
	}
}

func (c *UpdatesConsumer) handle(ctx context.Context, payload []byte) {
	event, err := events.Decode(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode route update")
		return
	}

	delivered := c.Hub.Broadcast(event.Targets, &Message{
		Type: string(event.Type),
		Data: event.Body,
	})
	log.Debug().Str("type", string(event.Type)).Int("delivered", delivered).Msg("Broadcast route update")

	if c.Notifications == nil || c.NotifyQueue == nil || !event.Notifiable() {
		return
	}

	notifications, err := c.Notifications.NotificationsForEvent(ctx, event)
	if err != nil {
		log.Error().Err(err).Str("route", event.RouteRef()).Msg("Failed to find route subscriptions")
		return
	}

	for _, notification := range notifications {
		notificationBytes, err := json.Marshal(notification)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode notification")
			continue
		}

		if err := c.NotifyQueue.PublishBytes(notificationBytes); err != nil {
			log.Error().Err(err).Str("target", notification.TargetUser).Msg("Failed to queue notification")
		}
	}
}
