package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// NewLogger logs one line per request. Handler errors are passed on to the
// fiber error handler after logging.
func NewLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		handlerErr := c.Next()

		msg := "HTTP Request"
		if handlerErr != nil {
			msg = handlerErr.Error()
		}

		code := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if handlerErr != nil && errors.As(handlerErr, &fiberErr) {
			code = fiberErr.Code
		}

		ipAddress := c.IP()
		if forwardedFor := c.Get(fiber.HeaderXForwardedFor); forwardedFor != "" {
			ipAddress = forwardedFor
		}

		requestLogger := log.With().
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", ipAddress).
			Str("latency", time.Since(startTime).String()).
			Str("user-agent", c.Get(fiber.HeaderUserAgent)).
			Logger()

		if userID, ok := c.Locals("account_userid").(string); ok {
			requestLogger = requestLogger.With().Str("user", userID).Logger()
		}

		switch {
		case code >= fiber.StatusBadRequest && code < fiber.StatusInternalServerError:
			requestLogger.Warn().Msg(msg)
		case code >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg(msg)
		default:
			requestLogger.Info().Msg(msg)
		}

		return handlerErr
	}
}
