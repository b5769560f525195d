package weather

import (
	"context"
)

// CityLookup finds the communes matching a free-text city name.
type CityLookup interface {
	Lookup(ctx context.Context, city string) ([]LocationCandidate, error)
}

// ForecastProvider fetches the raw forecast for an INSEE location code.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, code string) (*RawForecast, error)
}

// Geolocator locates an IP address. An empty ip locates the caller.
type Geolocator interface {
	Locate(ctx context.Context, ip string) (Geolocation, error)
}
