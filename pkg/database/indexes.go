package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	indexes := map[string][]mongo.IndexModel{
		StopsCollection: {
			{
				Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "location.coordinates", Value: "2d"}},
			},
		},
		RoutesCollection: {
			{
				Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "stoprefs", Value: 1}, {Key: "active", Value: 1}},
			},
		},
		BusesCollection: {
			{
				Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "currentrouteref", Value: 1}},
			},
		},
		TripRequestsCollection: {
			{
				Keys: bson.D{{Key: "userid", Value: 1}, {Key: "creationdatetime", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "selectedrouteref", Value: 1}},
			},
		},
		UserPushNotificationTargetCollection: {
			{
				Keys: bson.D{{Key: "userid", Value: 1}},
			},
		},
		UserRouteSubscriptionsCollection: {
			{
				Keys: bson.D{{Key: "routeref", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "userid", Value: 1}},
			},
		},
	}

	for collectionName, models := range indexes {
		opts := options.CreateIndexes()
		_, err := GetCollection(collectionName).Indexes().CreateMany(context.Background(), models, opts)
		if err != nil {
			log.Error().Err(err).Str("collection", collectionName).Msg("Creating Index")
		}
	}
}
