package notify

import (
	"context"
	"time"

	"github.com/expr-lang/expr"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPushTargetStore struct{}

// SavePushTarget replaces the device token registered for the user.
func (s *MongoPushTargetStore) SavePushTarget(ctx context.Context, userID string, token string) error {
	userPushNotificationTarget := ctdf.UserPushNotificationTarget{
		UserID:                userID,
		PushNotificationToken: token,
		ModificationDateTime:  time.Now(),
	}

	collection := database.GetCollection(database.UserPushNotificationTargetCollection)

	filter := bson.M{"userid": userID}
	update := bson.M{"$set": userPushNotificationTarget}
	opts := options.Update().SetUpsert(true)
	_, err := collection.UpdateOne(ctx, filter, update, opts)

	return err
}

func (s *MongoSubscriptionStore) SaveRouteSubscription(ctx context.Context, subscription *ctdf.UserRouteSubscription) error {
	collection := database.GetCollection(database.UserRouteSubscriptionsCollection)

	filter := bson.M{"userid": subscription.UserID, "routeref": subscription.RouteRef}
	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, filter, subscription, opts)

	return err
}

func (s *MongoSubscriptionStore) DeleteRouteSubscription(ctx context.Context, userID string, routeRef string) error {
	collection := database.GetCollection(database.UserRouteSubscriptionsCollection)

	_, err := collection.DeleteOne(ctx, bson.M{"userid": userID, "routeref": routeRef})

	return err
}

// ValidateFilter reports whether filter would compile as a subscription filter.
func ValidateFilter(filter string) error {
	if filter == "" {
		return nil
	}

	_, err := expr.Compile(filter, expr.AsBool(), expr.AllowUndefinedVariables())
	return err
}
