package dbwatch

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ModificationCreated     = "created"
	ModificationDeleted     = "deleted"
	ModificationDeactivated = "deactivated"
	ModificationActivated   = "activated"
	ModificationStops       = "stops_changed"
	ModificationUpdated     = "updated"
)

// RouteModifiedNotifier is satisfied by *realtime.RouteUpdateService.
type RouteModifiedNotifier interface {
	NotifyRouteModified(ctx context.Context, routeRef string, modificationType string) error
}

// RouteCache is satisfied by *transitnetwork.Cached.
type RouteCache interface {
	InvalidateRoutes(ctx context.Context) error
}

type routeChange struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	UpdateDescription struct {
		UpdatedFields bson.M `bson:"updatedFields"`
	} `bson:"updateDescription"`
	FullDocument             ctdf.Route `bson:"fullDocument"`
	FullDocumentBeforeChange ctdf.Route `bson:"fullDocumentBeforeChange"`
}

type RoutesWatch struct {
	Notifier RouteModifiedNotifier
	Cache    RouteCache

	// routeRefs maps document ids to route identifiers seen on this stream so
	// a delete can still be attributed when the server kept no pre-image.
	routeRefs map[primitive.ObjectID]string
}

// classify maps a change stream document to the route it touched and the kind
// of modification clients are told about. Changes that only touch fields
// travellers never see are ignored.
func classify(change *routeChange) (string, string, bool) {
	routeRef := change.FullDocument.PrimaryIdentifier
	if routeRef == "" {
		routeRef = change.FullDocumentBeforeChange.PrimaryIdentifier
	}
	if routeRef == "" {
		return "", "", false
	}

	switch change.OperationType {
	case "insert":
		return routeRef, ModificationCreated, true
	case "delete":
		return routeRef, ModificationDeleted, true
	case "replace":
		return routeRef, compareRoutes(&change.FullDocumentBeforeChange, &change.FullDocument), true
	case "update":
		updatedFields := change.UpdateDescription.UpdatedFields

		if active, ok := updatedFields["active"].(bool); ok {
			if active {
				return routeRef, ModificationActivated, true
			}
			return routeRef, ModificationDeactivated, true
		}

		for field := range updatedFields {
			if field == "stoprefs" || strings.HasPrefix(field, "stoprefs.") {
				return routeRef, ModificationStops, true
			}
		}

		if len(updatedFields) == 1 {
			if _, ok := updatedFields["modificationdatetime"]; ok {
				return "", "", false
			}
		}

		return routeRef, ModificationUpdated, true
	default:
		return "", "", false
	}
}

func compareRoutes(before *ctdf.Route, after *ctdf.Route) string {
	switch {
	case before.PrimaryIdentifier == "":
		return ModificationUpdated
	case before.Active && !after.Active:
		return ModificationDeactivated
	case !before.Active && after.Active:
		return ModificationActivated
	case strings.Join(before.StopRefs, ",") != strings.Join(after.StopRefs, ","):
		return ModificationStops
	default:
		return ModificationUpdated
	}
}

func (w *RoutesWatch) rememberRouteRef(change *routeChange) {
	if w.routeRefs == nil {
		w.routeRefs = map[primitive.ObjectID]string{}
	}

	documentID := change.DocumentKey.ID
	if documentID.IsZero() {
		return
	}

	if change.OperationType == "delete" {
		if change.FullDocumentBeforeChange.PrimaryIdentifier == "" {
			change.FullDocumentBeforeChange.PrimaryIdentifier = w.routeRefs[documentID]
		}
		delete(w.routeRefs, documentID)
		return
	}

	if change.FullDocument.PrimaryIdentifier != "" {
		w.routeRefs[documentID] = change.FullDocument.PrimaryIdentifier
	}
}

func (w *RoutesWatch) handle(ctx context.Context, change *routeChange) {
	w.rememberRouteRef(change)

	routeRef, modificationType, ok := classify(change)
	if !ok {
		return
	}

	if w.Cache != nil {
		if err := w.Cache.InvalidateRoutes(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to invalidate route cache")
		}
	}

	if err := w.Notifier.NotifyRouteModified(ctx, routeRef, modificationType); err != nil {
		log.Error().Err(err).Str("route", routeRef).Msg("Failed to send route modification")
	}
}

// Run blocks until the change stream ends or ctx is cancelled.
func (w *RoutesWatch) Run(ctx context.Context) error {
	log.Info().Msg("Starting dbwatch on collection routes")
	collection := database.GetCollection(database.RoutesCollection)

	matchPipeline := bson.D{
		{
			Key: "$match", Value: bson.D{
				{
					Key: "operationType", Value: bson.D{
						{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}},
					},
				},
			},
		},
	}

	opts := options.ChangeStream().SetFullDocumentBeforeChange(options.WhenAvailable).SetFullDocument(options.UpdateLookup)
	stream, err := collection.Watch(ctx, mongo.Pipeline{matchPipeline}, opts)
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var change routeChange

		if err := stream.Decode(&change); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		w.handle(ctx, &change)
	}

	return stream.Err()
}
