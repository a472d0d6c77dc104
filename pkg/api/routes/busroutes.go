package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/optimiser"
	"github.com/travigo/routeplanner/pkg/planner"
	"github.com/travigo/routeplanner/pkg/routeanalysis"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

const maxOptimisationTimeLimit = 5 * time.Minute

type busRoutes struct {
	network  transitnetwork.Network
	analysis *routeanalysis.Service
	realtime planner.RealtimeSource
}

func RoutesRouter(router fiber.Router, network transitnetwork.Network, analysis *routeanalysis.Service, realtime planner.RealtimeSource) {
	routes := &busRoutes{
		network:  network,
		analysis: analysis,
		realtime: realtime,
	}

	router.Post("/optimise", routes.optimiseRoute)
	router.Post("/alternatives", routes.generateAlternatives)
	router.Post("/stop_locations", routes.findOptimalStopLocations)

	router.Get("/:identifier", routes.getRoute)
	router.Get("/:identifier/analysis", routes.analyzeRoute)
	router.Get("/:identifier/realtime", routes.getRealtimeUpdates)
}

func (r *busRoutes) getRoute(c *fiber.Ctx) error {
	route, err := r.network.GetRoute(c.UserContext(), c.Params("identifier"))
	if errors.Is(err, transitnetwork.ErrNotFound) {
		return sendError(c, fiber.StatusNotFound, "Could not find Route matching Route Identifier")
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	routeReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, route)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sherrif could not reduce Route")
	}

	return c.JSON(routeReduced)
}

func (r *busRoutes) analyzeRoute(c *fiber.Ctx) error {
	analysis, err := r.analysis.AnalyzeRoute(c.UserContext(), c.Params("identifier"))
	if errors.Is(err, routeanalysis.ErrRouteNotFound) {
		return sendError(c, fiber.StatusNotFound, err.Error())
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(analysis)
}

func (r *busRoutes) getRealtimeUpdates(c *fiber.Ctx) error {
	routeRef := c.Params("identifier")

	if _, err := r.network.GetRoute(c.UserContext(), routeRef); errors.Is(err, transitnetwork.ErrNotFound) {
		return sendError(c, fiber.StatusNotFound, "Could not find Route matching Route Identifier")
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	updates := []*ctdf.RealtimeUpdate{}
	if r.realtime != nil {
		var err error
		updates, err = r.realtime.GetRealtimeUpdates(c.UserContext(), routeRef)
		if err != nil {
			return sendError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(updates)
}

// parseTimeLimit reads an ISO8601 duration such as PT30S. An empty value keeps
// the optimiser default.
func parseTimeLimit(value string) (time.Duration, error) {
	if value == "" {
		return optimiser.DefaultTimeLimit, nil
	}

	duration, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	limit := duration.Shift(now).Sub(now)
	if limit <= 0 || limit > maxOptimisationTimeLimit {
		return 0, errors.New("time limit out of range")
	}

	return limit, nil
}

func (r *busRoutes) optimiseRoute(c *fiber.Ctx) error {
	timeLimit, err := parseTimeLimit(c.Query("time_limit"))
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "Parameter time_limit should be an ISO8601 duration of at most 5 minutes")
	}

	var request ctdf.StopSequenceRequest
	if err := parseBody(c, &request); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	result := r.analysis.WithTimeLimit(timeLimit).OptimiseRoute(c.UserContext(), request)

	return c.JSON(result)
}

func (r *busRoutes) generateAlternatives(c *fiber.Ctx) error {
	count, err := strconv.Atoi(c.Query("count", "3"))
	if err != nil || count <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Parameter count should be a positive integer")
	}

	var request ctdf.StopSequenceRequest
	if err := parseBody(c, &request); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(r.analysis.GenerateAlternatives(c.UserContext(), request, count))
}

func (r *busRoutes) findOptimalStopLocations(c *fiber.Ctx) error {
	maxStops, err := strconv.Atoi(c.Query("max", "10"))
	if err != nil || maxStops <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Parameter max should be a positive integer")
	}

	var serviceArea geo.Polygon
	if err := parseBody(c, &serviceArea); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	stops, err := r.analysis.FindOptimalStopLocations(c.UserContext(), serviceArea, maxStops)
	if errors.Is(err, optimiser.ErrInvalidArgument) {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	stopsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, stops)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sherrif could not reduce stops")
	}

	return c.JSON(stopsReduced)
}
