package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

const NotifyQueue = "notify-queue"

type NotifyBatchConsumer struct {
	Sender Sender
}

func NewNotifyBatchConsumer(sender Sender) *NotifyBatchConsumer {
	return &NotifyBatchConsumer{Sender: sender}
}

func (c *NotifyBatchConsumer) Consume(batch rmq.Deliveries) {
	c.send(context.Background(), batch.Payloads())

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack notification")
		}
	}
}

func (c *NotifyBatchConsumer) send(ctx context.Context, payloads []string) int {
	sent := 0

	for _, payload := range payloads {
		var notification ctdf.Notification
		if err := json.Unmarshal([]byte(payload), &notification); err != nil {
			log.Error().Err(err).Msg("Failed to decode notification")
			continue
		}

		if notification.Type != ctdf.NotificationTypePush {
			log.Debug().Str("type", string(notification.Type)).Msg("Ignoring unsupported notification type")
			continue
		}

		err := c.Sender.SendPush(ctx, notification)
		if errors.Is(err, ErrNoPushTarget) {
			log.Debug().Str("target", notification.TargetUser).Msg("User has no push target")
			continue
		} else if err != nil {
			log.Error().Err(err).Str("target", notification.TargetUser).Msg("Failed to send push notification")
			continue
		}

		sent++
	}

	return sent
}
