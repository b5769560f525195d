package httpapi

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/gmet/internal/render"
	"github.com/i474232898/gmet/internal/store"
	"github.com/i474232898/gmet/internal/weather"
)

var validate = validator.New()

const requestIDKey = "requestid"

// Deps holds what the web handlers need. They all live as long as the server.
type Deps struct {
	Service    *weather.Service
	Popularity *store.PopularityStore
	Renderer   *render.HTMLRenderer
	Logger     *slog.Logger

	DefaultCity      string
	DefaultInseeCode string
	TopCities        int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &handler{deps: deps, logger: deps.Logger.With("component", "http")}

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(requestIDKey, uuid.NewString())
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "gmet",
		})
	})

	v1 := app.Group("/api/v1")
	v1.Get("/cities/top", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"cities": deps.Popularity.TopCities(deps.TopCities),
		})
	})

	// Browsers ask for these on every page view; they are not cities.
	app.Get("/favicon.ico", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/robots.txt", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	app.Get("/", h.page)
	app.Get("/:city", h.page)
}

// assetExts are file extensions a city name never ends with.
var assetExts = map[string]bool{
	".ico": true, ".png": true, ".jpg": true, ".svg": true, ".gif": true,
	".txt": true, ".xml": true, ".json": true, ".js": true, ".css": true,
	".map": true, ".html": true, ".php": true,
}

func isAssetPath(city string) bool {
	return assetExts[strings.ToLower(path.Ext(city))]
}

type handler struct {
	deps   Deps
	logger *slog.Logger
}

// cityParam holds the optional city of the page routes.
type cityParam struct {
	City string `validate:"omitempty,max=100"`
}

func (h *handler) page(c *fiber.Ctx) error {
	city, err := url.PathUnescape(c.Params("city"))
	if err != nil {
		return h.errorPage(c, fiber.StatusBadRequest, "Nom de ville invalide.")
	}
	if isAssetPath(city) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err := validate.Struct(cityParam{City: city}); err != nil {
		return h.errorPage(c, fiber.StatusBadRequest, "Nom de ville invalide.")
	}

	log := h.logger.With("request_id", c.Locals(requestIDKey))
	log.Info("forecast page requested", "from", c.IP(), "city", city)

	report, err := h.forecast(c.UserContext(), log, c.IP(), city)
	if err != nil {
		log.Error("forecast unavailable", "city", city, "error", err)
		return h.errorPage(c, fiber.StatusServiceUnavailable, "Prévisions momentanément indisponibles, réessayez plus tard.")
	}

	h.deps.Popularity.RecordVisit(report.Place.Name)

	var buf bytes.Buffer
	if err := h.deps.Renderer.Render(&buf, report, h.deps.Popularity.TopCities(h.deps.TopCities)); err != nil {
		log.Error("failed to render page", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render forecast")
	}

	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// errorPage answers status with a short HTML page showing message.
func (h *handler) errorPage(c *fiber.Ctx, status int, message string) error {
	var buf bytes.Buffer
	if err := h.deps.Renderer.RenderError(&buf, status, message); err != nil {
		h.logger.Error("failed to render error page", "error", err)
		return fiber.NewError(status, message)
	}
	c.Status(status)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// forecast resolves the city to show, geolocating the client when none is
// given. Geolocation failures and unknown or ambiguous-but-incompatible
// cities fall back to the default city; upstream failures are returned.
func (h *handler) forecast(ctx context.Context, log *slog.Logger, ip, city string) (*weather.Report, error) {
	code := ""
	if city == "" {
		geo, err := h.deps.Service.Locate(ctx, ip)
		if err != nil {
			log.Warn("geolocation unavailable, using default city", "ip", ip, "error", err)
			city, code = h.deps.DefaultCity, h.deps.DefaultInseeCode
		} else {
			city = geo.City
		}
	}

	report, err := h.deps.Service.ForecastCity(ctx, city, code)
	if err == nil {
		return report, nil
	}
	if !weather.IsResolutionError(err) {
		return nil, err
	}

	log.Warn("city not resolved, using default city", "city", city, "error", err)
	report, err = h.deps.Service.ForecastCity(ctx, h.deps.DefaultCity, h.deps.DefaultInseeCode)
	if err != nil {
		if weather.IsResolutionError(err) {
			return nil, errors.Join(weather.ErrRemoteUnavailable, err)
		}
		return nil, err
	}
	return report, nil
}
