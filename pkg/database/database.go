package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "routeplanner"

const (
	StopsCollection                      = "stops"
	RoutesCollection                     = "routes"
	BusesCollection                      = "buses"
	TripRequestsCollection               = "trip_requests"
	UserPushNotificationTargetCollection = "user_push_notification_target"
	UserRouteSubscriptionsCollection     = "user_route_subscriptions"
	StatsCollection                      = "stats"
)

func Connect() error {
	connectionString := defaultMongoConnectionString
	dbName := defaultMongoDatabase

	env := util.GetEnvironmentVariables()

	if env["TRAVIGO_MONGODB_CONNECTION"] != "" {
		connectionString = env["TRAVIGO_MONGODB_CONNECTION"]
	}

	if env["TRAVIGO_MONGODB_DATABASE"] != "" {
		dbName = env["TRAVIGO_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return err
	}

	createIndexes()
	runCommands()

	return nil
}

func changeStreamPreImagesCommand(collectionName string) bson.D {
	return bson.D{
		{Key: "collMod", Value: collectionName},
		{Key: "changeStreamPreAndPostImages", Value: bson.M{"enabled": true}},
	}
}

// The routes watch reads fullDocumentBeforeChange to attribute deletes.
// Pre-image retention also needs the cluster parameter set once:
// db.adminCommand({setClusterParameter: {changeStreamOptions: {preAndPostImages: {expireAfterSeconds: 3600}}}})
func runCommands() {
	var result bson.M
	err := MongoGlobalInstance.Database.RunCommand(context.Background(), changeStreamPreImagesCommand(RoutesCollection)).Decode(&result)
	if err != nil {
		log.Error().Err(err).Str("collection", RoutesCollection).Msg("Run commands mongodb")
	}
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}
