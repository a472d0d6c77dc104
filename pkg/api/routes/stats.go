package routes

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
)

type StatsReader interface {
	Latest(ctx context.Context) (map[string]bson.M, error)
}

func StatsRouter(router fiber.Router, reader StatsReader) {
	router.Get("/", func(c *fiber.Ctx) error {
		statsRecords, err := reader.Latest(c.UserContext())
		if err != nil {
			return sendError(c, fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(statsRecords)
	})
}
