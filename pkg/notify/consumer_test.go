package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

type recordingSender struct {
	sent []ctdf.Notification
}

func (r *recordingSender) SendPush(ctx context.Context, notification ctdf.Notification) error {
	switch notification.TargetUser {
	case "no-token":
		return ErrNoPushTarget
	case "broken":
		return errors.New("firebase unavailable")
	}

	r.sent = append(r.sent, notification)
	return nil
}

func notificationPayload(t *testing.T, notification ctdf.Notification) string {
	payload, err := json.Marshal(notification)
	assert.Nil(t, err)

	return string(payload)
}

func TestNotifyConsumerSend(t *testing.T) {
	assert := assert.New(t)

	sender := &recordingSender{}
	consumer := NewNotifyBatchConsumer(sender)

	sent := consumer.send(context.Background(), []string{
		notificationPayload(t, ctdf.Notification{TargetUser: "alice", Type: ctdf.NotificationTypePush, Title: "Route delayed"}),
		notificationPayload(t, ctdf.Notification{TargetUser: "no-token", Type: ctdf.NotificationTypePush}),
		notificationPayload(t, ctdf.Notification{TargetUser: "broken", Type: ctdf.NotificationTypePush}),
		notificationPayload(t, ctdf.Notification{TargetUser: "bob", Type: "Email"}),
		"{not json",
	})

	assert.Equal(1, sent)
	assert.Len(sender.sent, 1)
	assert.Equal("alice", sender.sent[0].TargetUser)
	assert.Equal("Route delayed", sender.sent[0].Title)
}
