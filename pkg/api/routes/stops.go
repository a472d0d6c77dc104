package routes

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/routeplanner/pkg/ctdf"
	"github.com/travigo/routeplanner/pkg/geo"
	"github.com/travigo/routeplanner/pkg/indexer"
	"github.com/travigo/routeplanner/pkg/transitnetwork"
)

type stopsRoutes struct {
	network transitnetwork.Network
}

func StopsRouter(router fiber.Router, network transitnetwork.Network) {
	routes := &stopsRoutes{network: network}

	router.Get("/near", routes.getStopsNear)
	router.Get("/search", routes.searchStops)
	router.Get("/:identifier", routes.getStop)
}

func (r *stopsRoutes) getStopsNear(c *fiber.Ctx) error {
	latitude, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || requestValidator.Var(latitude, "latitude") != nil {
		return sendError(c, fiber.StatusBadRequest, "Parameter lat should be a latitude")
	}
	longitude, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || requestValidator.Var(longitude, "longitude") != nil {
		return sendError(c, fiber.StatusBadRequest, "Parameter lon should be a longitude")
	}
	radius, err := strconv.ParseFloat(c.Query("radius", strconv.Itoa(ctdf.DefaultMaxWalkingDistanceMeters)), 64)
	if err != nil || radius <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Parameter radius should be a positive number of metres")
	}

	stops, err := r.network.FindStopsNear(c.UserContext(), geo.NewPoint(latitude, longitude), radius)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}
	if stops == nil {
		stops = []*ctdf.Stop{}
	}

	stopsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, stops)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sherrif could not reduce stops")
	}

	return c.JSON(stopsReduced)
}

func (r *stopsRoutes) searchStops(c *fiber.Ctx) error {
	query := c.Query("name")
	if query == "" {
		return sendError(c, fiber.StatusBadRequest, "Parameter name is required")
	}

	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(indexer.DefaultSearchLimit)))
	if err != nil || limit <= 0 {
		return sendError(c, fiber.StatusBadRequest, "Parameter limit should be a positive integer")
	}

	stops, err := indexer.SearchStops(c.UserContext(), query, limit)
	if errors.Is(err, indexer.ErrSearchUnavailable) {
		return sendError(c, fiber.StatusServiceUnavailable, err.Error())
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(stops)
}

func (r *stopsRoutes) getStop(c *fiber.Ctx) error {
	stop, err := r.network.GetStop(c.UserContext(), c.Params("identifier"))
	if errors.Is(err, transitnetwork.ErrNotFound) {
		return sendError(c, fiber.StatusNotFound, "Could not find Stop matching Stop Identifier")
	} else if err != nil {
		return sendError(c, fiber.StatusInternalServerError, err.Error())
	}

	stopReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic", "detailed"},
	}, stop)
	if err != nil {
		return sendError(c, fiber.StatusInternalServerError, "Sherrif could not reduce Stop")
	}

	return c.JSON(stopReduced)
}
