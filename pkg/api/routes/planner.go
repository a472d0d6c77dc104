package routes

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/planner"
)

type plannerRoutes struct {
	planner *planner.Planner
}

func PlannerRouter(router fiber.Router, tripPlanner *planner.Planner) {
	routes := &plannerRoutes{planner: tripPlanner}

	router.Post("/plan", routes.planTrip)
	router.Post("/optimal", routes.getOptimalTrip)
	router.Post("/realtime", routes.applyRealtimeUpdates)
}

func parseTripPlanRequest(c *fiber.Ctx) (*ctdf.TripPlanRequest, error) {
	var request ctdf.TripPlanRequest
	if err := parseBody(c, &request); err != nil {
		return nil, err
	}
	request.ApplyDefaults(time.Now())

	return &request, nil
}

func (r *plannerRoutes) planTrip(c *fiber.Ctx) error {
	request, err := parseTripPlanRequest(c)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	itineraries := r.planner.PlanTrip(c.UserContext(), *request)
	if itineraries == nil {
		itineraries = []*ctdf.Itinerary{}
	}

	planner.IndexTripPlan(request, itineraries)

	return c.JSON(itineraries)
}

func (r *plannerRoutes) getOptimalTrip(c *fiber.Ctx) error {
	request, err := parseTripPlanRequest(c)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	itinerary, err := r.planner.GetOptimalTrip(c.UserContext(), *request)
	if errors.Is(err, planner.ErrNoItinerary) {
		return sendError(c, fiber.StatusNotFound, "No route found between the origin and destination")
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(itinerary)
}

func (r *plannerRoutes) applyRealtimeUpdates(c *fiber.Ctx) error {
	var itinerary ctdf.Itinerary
	if err := parseBody(c, &itinerary); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(r.planner.ApplyRealtimeUpdates(c.UserContext(), &itinerary))
}
