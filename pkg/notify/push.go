package notify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"
)

var ErrNoPushTarget = errors.New("failed to find user token")

// Sender delivers a single notification to its target user.
type Sender interface {
	SendPush(ctx context.Context, notification ctdf.Notification) error
}

type PushManager struct {
	FirebaseApp *firebase.App

	messagingClient *messaging.Client
}

func (m *PushManager) Setup(ctx context.Context) error {
	fireBaseAuthKey := os.Getenv("TRAVIGO_FIREBASE_SERVICE_ACCOUNT")

	decodedKey, err := base64.StdEncoding.DecodeString(fireBaseAuthKey)
	if err != nil {
		return fmt.Errorf("decode firebase service account: %w", err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(decodedKey))
	if err != nil {
		return err
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return err
	}

	m.FirebaseApp = app
	m.messagingClient = messagingClient

	return nil
}

func (m *PushManager) SendPush(ctx context.Context, notification ctdf.Notification) error {
	collection := database.GetCollection(database.UserPushNotificationTargetCollection)

	var userPushNotificationTarget *ctdf.UserPushNotificationTarget
	err := collection.FindOne(ctx, bson.M{"userid": notification.TargetUser}).Decode(&userPushNotificationTarget)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && userPushNotificationTarget == nil) {
		return ErrNoPushTarget
	} else if err != nil {
		return err
	}

	_, err = m.messagingClient.Send(ctx, &messaging.Message{
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Message,
		},
		Token: userPushNotificationTarget.PushNotificationToken,
	})
	if err != nil {
		return err
	}

	log.Info().Str("target", notification.TargetUser).Msg("Sent Push Notification")

	return nil
}
