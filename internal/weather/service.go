package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Service sequences city resolution, forecast retrieval and normalization.
type Service struct {
	lookup     CityLookup
	forecasts  ForecastProvider
	geolocator Geolocator
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(lookup CityLookup, forecasts ForecastProvider, geolocator Geolocator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		lookup:     lookup,
		forecasts:  forecasts,
		geolocator: geolocator,
		logger:     logger.With("component", "weather-service"),
		now:        time.Now,
	}
}

// Resolve maps a city name, and an optional INSEE code, to one commune.
// Ambiguous matches are not an error: they are logged and returned as
// alternatives.
func (s *Service) Resolve(ctx context.Context, city, code string) (Resolution, error) {
	results, err := s.lookup.Lookup(ctx, city)
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup %q: %w", city, err)
	}
	s.logger.Debug("city lookup answered", "city", city, "results", len(results))

	res, err := SelectCandidate(city, code, results)
	if err != nil {
		s.logger.Error("city resolution failed", "city", city, "insee", code, "error", err)
		return Resolution{}, err
	}

	if res.Ambiguous() {
		s.logger.Warn("more than one city is matching name, forecast retrieved for the first one only; use the insee code to change it",
			"city", city,
			"selected", res.Location.Code,
		)
		for _, alt := range append([]LocationCandidate{res.Location}, res.Alternatives...) {
			s.logger.Debug("candidate",
				"insee", alt.Code,
				"name", alt.Name,
				"postal", alt.PostalCode,
				"department", alt.DepartmentName,
			)
		}
	}

	return res, nil
}

// Forecast fetches and normalizes the forecast for loc.
func (s *Service) Forecast(ctx context.Context, loc LocationCandidate) (*Report, error) {
	raw, err := s.forecasts.FetchForecast(ctx, loc.Code)
	if err != nil {
		s.logger.Error("failed to get forecast from provider", "insee", loc.Code, "error", err)
		return nil, fmt.Errorf("forecast %s: %w", loc.Code, err)
	}

	days := Normalize(raw)
	s.logger.Debug("forecast normalized", "insee", loc.Code, "days", len(days))

	return &Report{
		Location: loc,
		Place:    raw.Place,
		IssuedAt: s.now(),
		Days:     days,
	}, nil
}

// ForecastCity resolves city and returns its forecast.
func (s *Service) ForecastCity(ctx context.Context, city, code string) (*Report, error) {
	res, err := s.Resolve(ctx, city, code)
	if err != nil {
		return nil, err
	}
	return s.Forecast(ctx, res.Location)
}

// Locate geolocates ip. A bogon answer is reported as ErrRemoteUnavailable
// so callers fall back to their default city.
func (s *Service) Locate(ctx context.Context, ip string) (Geolocation, error) {
	if s.geolocator == nil {
		return Geolocation{}, fmt.Errorf("%w: no geolocation service configured", ErrRemoteUnavailable)
	}

	geo, err := s.geolocator.Locate(ctx, ip)
	if err != nil {
		return Geolocation{}, fmt.Errorf("locate %q: %w", ip, err)
	}
	if geo.Bogon || geo.City == "" {
		return geo, fmt.Errorf("%w: no city for address %q", ErrRemoteUnavailable, geo.IP)
	}

	s.logger.Debug("geolocated", "ip", geo.IP, "city", geo.City, "postal", geo.PostalCode)
	return geo, nil
}

// IsResolutionError reports whether err means the city could not be
// matched, as opposed to an upstream failure.
func IsResolutionError(err error) bool {
	return errors.Is(err, ErrUnknownCity) || errors.Is(err, ErrIncompatibleCode)
}
