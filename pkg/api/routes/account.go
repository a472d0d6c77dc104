package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/database"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/notify"
)

type TripRequestStore interface {
	SaveTripRequest(ctx context.Context, tripRequest *ctdf.TripRequest) error
	GetUserTripHistory(ctx context.Context, userID string, pageSize int) ([]*ctdf.TripRequest, error)
}

type PushTargetStore interface {
	SavePushTarget(ctx context.Context, userID string, token string) error
}

type RouteSubscriptionStore interface {
	SaveRouteSubscription(ctx context.Context, subscription *ctdf.UserRouteSubscription) error
	DeleteRouteSubscription(ctx context.Context, userID string, routeRef string) error
}

type AccountStores struct {
	TripRequests  TripRequestStore
	PushTargets   PushTargetStore
	Subscriptions RouteSubscriptionStore
}

type accountRoutes struct {
	stores AccountStores
}

func AccountRouter(router fiber.Router, stores AccountStores) {
	routes := &accountRoutes{stores: stores}

	router.Post("/trips", routes.saveTripRequest)
	router.Get("/trips", routes.getTripHistory)
	router.Post("/notificationtoken", routes.postNotificationToken)
	router.Post("/subscriptions", routes.postRouteSubscription)
	router.Delete("/subscriptions/:route", routes.deleteRouteSubscription)
}

type tripRequestBody struct {
	Origin        geo.Point        `json:"origin"`
	Destination   geo.Point        `json:"destination"`
	RequestedTime time.Time        `json:"requested_time"`
	Preferences   ctdf.Preferences `json:"preferences"`

	SelectedItineraryRef string `json:"selected_itinerary_ref"`
	SelectedRouteRef     string `json:"selected_route_ref"`
}

func (r *accountRoutes) saveTripRequest(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	var requestBody tripRequestBody
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	now := time.Now()
	if requestBody.RequestedTime.IsZero() {
		requestBody.RequestedTime = now
	}

	tripRequest := &ctdf.TripRequest{
		PrimaryIdentifier:    uuid.New().String(),
		UserID:               userID,
		Origin:               requestBody.Origin,
		Destination:          requestBody.Destination,
		RequestedTime:        requestBody.RequestedTime,
		Preferences:          requestBody.Preferences,
		SelectedItineraryRef: requestBody.SelectedItineraryRef,
		SelectedRouteRef:     requestBody.SelectedRouteRef,
		CreationDateTime:     now,
	}

	if err := r.stores.TripRequests.SaveTripRequest(c.UserContext(), tripRequest); err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(tripRequest)
}

func (r *accountRoutes) getTripHistory(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	tripRequests, err := r.stores.TripRequests.GetUserTripHistory(c.UserContext(), userID, database.TripHistoryPageSize)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}
	if tripRequests == nil {
		tripRequests = []*ctdf.TripRequest{}
	}

	return c.JSON(tripRequests)
}

func (r *accountRoutes) postNotificationToken(c *fiber.Ctx) error {
	var requestBody struct {
		Token string `validate:"required"`
	}
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, "No token set")
	}

	userID := c.Locals("account_userid").(string)

	if err := r.stores.PushTargets.SavePushTarget(c.UserContext(), userID, requestBody.Token); err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (r *accountRoutes) postRouteSubscription(c *fiber.Ctx) error {
	var requestBody struct {
		RouteRef string `json:"route_ref" validate:"required"`
		Filter   string `json:"filter"`
	}
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := notify.ValidateFilter(requestBody.Filter); err != nil {
		return sendError(c, fiber.StatusBadRequest, "Invalid subscription filter: "+err.Error())
	}

	subscription := &ctdf.UserRouteSubscription{
		UserID:           c.Locals("account_userid").(string),
		RouteRef:         requestBody.RouteRef,
		Filter:           requestBody.Filter,
		CreationDateTime: time.Now(),
	}

	if err := r.stores.Subscriptions.SaveRouteSubscription(c.UserContext(), subscription); err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(subscription)
}

func (r *accountRoutes) deleteRouteSubscription(c *fiber.Ctx) error {
	userID := c.Locals("account_userid").(string)

	if err := r.stores.Subscriptions.DeleteRouteSubscription(c.UserContext(), userID, c.Params("route")); err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
