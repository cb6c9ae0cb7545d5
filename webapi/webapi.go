// Package webapi provides the HTTP API for the currency converter.
// It is organized into sub-packages:
// - currency: the supported currency catalog
// - conversion: converter sessions
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/fxconverter/pkg/app"
	"github.com/amirasaad/fxconverter/pkg/service/conversion"
	"github.com/amirasaad/fxconverter/webapi/common"
	conversionweb "github.com/amirasaad/fxconverter/webapi/conversion"
	currencyweb "github.com/amirasaad/fxconverter/webapi/currency"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "fxconverter",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Configure rate limiting middleware
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	if a.Config.RateLimit != nil && a.Config.RateLimit.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          a.Config.RateLimit.MaxRequests,
			Expiration:   a.Config.RateLimit.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get(
		"/",
		func(c *fiber.Ctx) error {
			return c.SendString("FX Converter API is running! 🚀")
		},
	)

	var storeOpts []conversion.StoreOption
	if a.Config.Session != nil {
		storeOpts = append(storeOpts, conversion.WithIdleTTL(a.Config.Session.IdleTTL))
	}
	store := conversion.NewStore(a.NewSession, storeOpts...)
	a.AddCloser(store)
	currencyweb.Routes(fiberApp)
	conversionweb.Routes(fiberApp, store, a.Deps.Logger)
	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if first, _, found := strings.Cut(forwardedFor, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
