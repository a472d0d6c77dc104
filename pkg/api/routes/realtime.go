package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// RouteUpdater is satisfied by *realtime.RouteUpdateService.
type RouteUpdater interface {
	NotifyBusLocationUpdate(ctx context.Context, routeRef string, busRef string, latitude float64, longitude float64) error
	NotifyRouteDelayUpdate(ctx context.Context, routeRef string, delayMinutes int, reason string) error
	NotifyRouteModified(ctx context.Context, routeRef string, modificationType string) error
	NotifySystemAlert(ctx context.Context, message string, alertType string) error
}

type realtimeRoutes struct {
	updates RouteUpdater
}

func RealtimeRouter(router fiber.Router, updates RouteUpdater) {
	routes := &realtimeRoutes{updates: updates}

	router.Post("/bus_location", routes.postBusLocation)
	router.Post("/delay", routes.postDelay)
	router.Post("/modified", routes.postRouteModified)
	router.Post("/alert", routes.postSystemAlert)
}

func sendUpdateResult(c *fiber.Ctx, err error) error {
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

func (r *realtimeRoutes) postBusLocation(c *fiber.Ctx) error {
	var requestBody struct {
		RouteRef  string  `json:"route_ref" validate:"required"`
		BusRef    string  `json:"bus_ref" validate:"required"`
		Latitude  float64 `json:"latitude" validate:"latitude"`
		Longitude float64 `json:"longitude" validate:"longitude"`
	}
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := r.updates.NotifyBusLocationUpdate(c.UserContext(), requestBody.RouteRef, requestBody.BusRef, requestBody.Latitude, requestBody.Longitude)

	return sendUpdateResult(c, err)
}

func (r *realtimeRoutes) postDelay(c *fiber.Ctx) error {
	var requestBody struct {
		RouteRef     string `json:"route_ref" validate:"required"`
		DelayMinutes int    `json:"delay_minutes" validate:"gte=0"`
		Reason       string `json:"reason"`
	}
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := r.updates.NotifyRouteDelayUpdate(c.UserContext(), requestBody.RouteRef, requestBody.DelayMinutes, requestBody.Reason)

	return sendUpdateResult(c, err)
}

func (r *realtimeRoutes) postRouteModified(c *fiber.Ctx) error {
	var requestBody struct {
		RouteRef         string `json:"route_ref" validate:"required"`
		ModificationType string `json:"modification_type" validate:"required"`
	}
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := r.updates.NotifyRouteModified(c.UserContext(), requestBody.RouteRef, requestBody.ModificationType)

	return sendUpdateResult(c, err)
}

func (r *realtimeRoutes) postSystemAlert(c *fiber.Ctx) error {
	var requestBody struct {
		Message   string `json:"message" validate:"required"`
		AlertType string `json:"alert_type" validate:"omitempty,oneof=info warning critical"`
	}
	if err := parseBody(c, &requestBody); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := r.updates.NotifySystemAlert(c.UserContext(), requestBody.Message, requestBody.AlertType)

	return sendUpdateResult(c, err)
}
