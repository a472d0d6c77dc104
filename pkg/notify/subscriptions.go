package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
)

// SubscriptionStore lists the users who want notifications about a route.
type SubscriptionStore interface {
	FindRouteSubscriptions(ctx context.Context, routeRef string) ([]*ctdf.UserRouteSubscription, error)
}

type MongoSubscriptionStore struct{}

func (s *MongoSubscriptionStore) FindRouteSubscriptions(ctx context.Context, routeRef string) ([]*ctdf.UserRouteSubscription, error) {
	collection := database.GetCollection(database.UserRouteSubscriptionsCollection)

	cursor, err := collection.Find(ctx, bson.M{"routeref": routeRef})
	if err != nil {
		return nil, err
	}

	var subscriptions []*ctdf.UserRouteSubscription
	if err := cursor.All(ctx, &subscriptions); err != nil {
		return nil, err
	}

	return subscriptions, nil
}

// FilterCache holds compiled subscription filters keyed by their source.
type FilterCache struct {
	programs sync.Map
}

func (f *FilterCache) compile(filter string) (*vm.Program, error) {
	if program, ok := f.programs.Load(filter); ok {
		return program.(*vm.Program), nil
	}

	program, err := expr.Compile(filter, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}
	f.programs.Store(filter, program)

	return program, nil
}

// Matches evaluates the subscription filter against the event body. An empty
// filter matches every event.
func (f *FilterCache) Matches(subscription *ctdf.UserRouteSubscription, event *ctdf.Event) (bool, error) {
	if subscription.Filter == "" {
		return true, nil
	}

	program, err := f.compile(subscription.Filter)
	if err != nil {
		return false, fmt.Errorf("compile filter %q: %w", subscription.Filter, err)
	}

	env := map[string]interface{}{
		"Type": string(event.Type),
	}
	for key, value := range event.BodyMap() {
		env[key] = value
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", subscription.Filter, err)
	}

	matched, _ := result.(bool)
	return matched, nil
}

type Notifier struct {
	Subscriptions SubscriptionStore
	Filters       *FilterCache
}

func NewNotifier(subscriptions SubscriptionStore) *Notifier {
	return &Notifier{
		Subscriptions: subscriptions,
		Filters:       &FilterCache{},
	}
}

// NotificationsForEvent builds one push notification per subscribed user whose
// filter accepts the event. Subscriptions with broken filters are skipped.
func (n *Notifier) NotificationsForEvent(ctx context.Context, event *ctdf.Event) ([]ctdf.Notification, error) {
	if !event.Notifiable() || event.RouteRef() == "" {
		return nil, nil
	}

	subscriptions, err := n.Subscriptions.FindRouteSubscriptions(ctx, event.RouteRef())
	if err != nil {
		return nil, err
	}

	notificationData := event.GetNotificationData()
	notified := map[string]bool{}
	var notifications []ctdf.Notification

	for _, subscription := range subscriptions {
		if notified[subscription.UserID] {
			continue
		}

		matched, err := n.Filters.Matches(subscription, event)
		if err != nil {
			log.Error().Err(err).Str("user", subscription.UserID).Str("route", subscription.RouteRef).Msg("Failed to evaluate subscription filter")
			continue
		}
		if !matched {
			continue
		}

		notified[subscription.UserID] = true
		notifications = append(notifications, ctdf.Notification{
			TargetUser: subscription.UserID,
			Type:       ctdf.NotificationTypePush,
			Title:      notificationData.Title,
			Message:    notificationData.Message,
		})
	}

	return notifications, nil
}
