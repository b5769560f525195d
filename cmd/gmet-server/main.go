package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/gmet/internal/api/http"
	"github.com/i474232898/gmet/internal/config"
	"github.com/i474232898/gmet/internal/render"
	"github.com/i474232898/gmet/internal/store"
	"github.com/i474232898/gmet/internal/weather"
	"github.com/i474232898/gmet/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := cfg.NewLogger(os.Stdout, true)
	slog.SetDefault(lg)

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.NewHTTPClientConfig(cfg.HTTPTimeout, cfg.UpstreamRPS, cfg.UpstreamBurst)

	meteo := providers.NewMeteoFranceProvider(httpCfg, cfg.LookupURL, cfg.ForecastURL)
	geo := providers.NewIPInfoProvider(httpCfg, cfg.GeoIPURL)

	// Core service orchestrating resolution, retrieval and normalization.
	service := weather.NewService(meteo, meteo, geo, lg)

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "gmet",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response; internal errors are never shown.
			code := fiber.StatusInternalServerError
			message := "internal server error"
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": message,
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:          service,
		Popularity:       store.NewPopularityStore(cfg.FavoriteCities),
		Renderer:         renderer,
		Logger:           lg,
		DefaultCity:      cfg.DefaultCity,
		DefaultInseeCode: cfg.DefaultInseeCode,
		TopCities:        cfg.TopCities,
	})

	go func() {
		lg.Info("starting server", "addr", cfg.ServerAddr())
		if err := app.Listen(cfg.ServerAddr()); err != nil {
			lg.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		lg.Error("error during shutdown", "error", err)
	}
}
