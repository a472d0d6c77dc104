package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/routeplanner/pkg/ctdf"
)

type fakeSubscriptionStore struct {
	subscriptions []*ctdf.UserRouteSubscription
	err           error
}

func (f *fakeSubscriptionStore) FindRouteSubscriptions(ctx context.Context, routeRef string) ([]*ctdf.UserRouteSubscription, error) {
	if f.err != nil {
		return nil, f.err
	}

	var matching []*ctdf.UserRouteSubscription
	for _, subscription := range f.subscriptions {
		if subscription.RouteRef == routeRef {
			matching = append(matching, subscription)
		}
	}
	return matching, nil
}

// delayEvent goes through JSON so the body looks the same as one read off the queue.
func delayEvent(t *testing.T, routeRef string, delayMinutes int) *ctdf.Event {
	eventBytes, err := json.Marshal(ctdf.Event{
		Type: ctdf.EventTypeRouteDelayUpdate,
		Body: ctdf.RouteDelayUpdate{RouteRef: routeRef, DelayMinutes: delayMinutes},
	})
	assert.Nil(t, err)

	var event ctdf.Event
	assert.Nil(t, json.Unmarshal(eventBytes, &event))

	return &event
}

func TestFilterMatches(t *testing.T) {
	assert := assert.New(t)
	filters := &FilterCache{}
	event := delayEvent(t, "R1", 12)

	matched, err := filters.Matches(&ctdf.UserRouteSubscription{Filter: ""}, event)
	assert.Nil(err)
	assert.True(matched)

	matched, err = filters.Matches(&ctdf.UserRouteSubscription{Filter: "DelayMinutes >= 10"}, event)
	assert.Nil(err)
	assert.True(matched)

	matched, err = filters.Matches(&ctdf.UserRouteSubscription{Filter: "DelayMinutes >= 15"}, event)
	assert.Nil(err)
	assert.False(matched)

	matched, err = filters.Matches(&ctdf.UserRouteSubscription{Filter: `Type == "RouteModified"`}, event)
	assert.Nil(err)
	assert.False(matched)

	_, err = filters.Matches(&ctdf.UserRouteSubscription{Filter: "DelayMinutes >="}, event)
	assert.NotNil(err)
}

func TestNotificationsForEvent(t *testing.T) {
	assert := assert.New(t)

	notifier := NewNotifier(&fakeSubscriptionStore{
		subscriptions: []*ctdf.UserRouteSubscription{
			{UserID: "alice", RouteRef: "R1"},
			{UserID: "alice", RouteRef: "R1", Filter: "DelayMinutes > 0"},
			{UserID: "bob", RouteRef: "R1", Filter: "DelayMinutes >= 30"},
			{UserID: "carol", RouteRef: "R1", Filter: "this is not valid"},
			{UserID: "dave", RouteRef: "R2"},
		},
	})

	notifications, err := notifier.NotificationsForEvent(context.Background(), delayEvent(t, "R1", 12))
	assert.Nil(err)
	assert.Len(notifications, 1)
	assert.Equal("alice", notifications[0].TargetUser)
	assert.Equal(ctdf.NotificationTypePush, notifications[0].Type)
	assert.Equal("Route delayed", notifications[0].Title)
	assert.Equal("Route R1 is running 12 minutes late.", notifications[0].Message)
}

func TestNotificationsForEventSkipsAlerts(t *testing.T) {
	notifier := NewNotifier(&fakeSubscriptionStore{err: errors.New("should not be called")})

	notifications, err := notifier.NotificationsForEvent(context.Background(), &ctdf.Event{Type: ctdf.EventTypeSystemAlert})
	assert.Nil(t, err)
	assert.Empty(t, notifications)
}

func TestNotificationsForEventStoreError(t *testing.T) {
	notifier := NewNotifier(&fakeSubscriptionStore{err: errors.New("mongo down")})

	_, err := notifier.NotificationsForEvent(context.Background(), delayEvent(t, "R1", 5))
	assert.NotNil(t, err)
}

func TestValidateFilter(t *testing.T) {
	assert.NoError(t, ValidateFilter(""))
	assert.NoError(t, ValidateFilter("DelayMinutes >= 10"))
	assert.Error(t, ValidateFilter("DelayMinutes >="))
}
