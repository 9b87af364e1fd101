package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"backoffice/internal/config"
	"backoffice/internal/http/handlers"
	applog "backoffice/internal/log"
	"backoffice/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// The anonymous-pricing fallback group must exist before serving.
	defaultGroupID, err := repos.NewCustomerRepo(db).GroupIDByCode(cfg.DefaultGroup)
	if err != nil {
		log.Fatalf("default customer group %q not found: %v", cfg.DefaultGroup, err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New())

	deps := handlers.NewDeps(db, defaultGroupID)

	api := app.Group("/api/v1")

	// Catalog
	api.Get("/categories", deps.CatalogHandler.Categories)
	api.Get("/categories/:id/products", deps.CatalogHandler.ProductsByCategory)
	api.Get("/products/:id", deps.CatalogHandler.ProductDetail)

	// Pricing (quote endpoint throttled; it is the hot public lookup)
	quoteLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|quote"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Warn(c, "rate.quote.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/products/:id/price", quoteLimiter, deps.PricingHandler.Quote)
	api.Get("/products/:id/tiers", deps.PricingHandler.Tiers)

	// Orders
	api.Post("/orders", deps.OrderHandler.Place)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	api.Post("/orders/:id/pay", deps.OrderHandler.Pay)
	api.Post("/orders/:id/unpay", deps.OrderHandler.Unpay)
	api.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)
	api.Get("/customers/:id/orders", deps.OrderHandler.ListByCustomer)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	applog.Info(nil, "server.start", map[string]any{"port": cfg.Port, "default_group": cfg.DefaultGroup})
	log.Fatal(app.Listen(":" + cfg.Port))
}
