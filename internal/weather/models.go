package weather

import (
	"time"
)

// Period names a coarse slice of a day, as used by the forecast provider.
type Period string

const (
	PeriodMatin Period = "matin"
	PeriodMidi  Period = "midi"
	PeriodSoir  Period = "soir"
	PeriodNuit  Period = "nuit"
)

// Periods lists the periods of a day in display order.
var Periods = []Period{PeriodMatin, PeriodMidi, PeriodSoir, PeriodNuit}

// LocationCandidate is one commune returned by the city lookup service.
// Code is the INSEE location code used to query the forecast.
type LocationCandidate struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	PostalCode       string `json:"postalCode"`
	DepartmentName   string `json:"departmentName"`
	DepartmentNumber string `json:"departmentNumber"`
	Country          string `json:"country"`
}

// Resolution is the outcome of resolving a city name.
// Alternatives holds the other matches that were not selected, in lookup order.
type Resolution struct {
	Location     LocationCandidate   `json:"location"`
	Alternatives []LocationCandidate `json:"alternatives,omitempty"`
}

// Ambiguous reports whether more than one commune matched.
func (r Resolution) Ambiguous() bool {
	return len(r.Alternatives) > 0
}

// Geolocation is the answer of the IP geolocation service.
type Geolocation struct {
	IP         string `json:"ip"`
	City       string `json:"city"`
	PostalCode string `json:"postal"`
	Country    string `json:"country"`
	Bogon      bool   `json:"bogon"`
}

// Place describes the commune a forecast was issued for.
type Place struct {
	Name             string `json:"name"`
	DepartmentNumber string `json:"departmentNumber"`
	DepartmentName   string `json:"departmentName"`
	Region           string `json:"region"`
	Country          string `json:"country"`
}

// DaySummary is one normalized forecast day.
// Periods are ordered matin, midi, soir, nuit and only contain periods
// the provider sent data for.
type DaySummary struct {
	DayIndex       int              `json:"dayIndex"`
	Date           time.Time        `json:"date"`
	Description    string           `json:"description"`
	TemperatureMin float64          `json:"temperatureMin"`
	TemperatureMax float64          `json:"temperatureMax"`
	Periods        []PeriodForecast `json:"periods"`
}

// PeriodForecast represents one period of a day either by its refined
// 3-hour buckets or, when none exist, by the coarse provider record.
// Exactly one of Coarse and Buckets is set.
type PeriodForecast struct {
	Name    Period          `json:"name"`
	Coarse  *CoarseForecast `json:"coarse,omitempty"`
	Buckets []TimeBucket    `json:"buckets,omitempty"`
}

// Refined reports whether the period is represented by 3-hour buckets.
func (p PeriodForecast) Refined() bool {
	return len(p.Buckets) > 0
}

// CoarseForecast is the provider's per-period forecast.
type CoarseForecast struct {
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
}

// TimeBucket is a refined 3-hour forecast, labelled "HH-HH".
type TimeBucket struct {
	Label           string  `json:"label"`
	Description     string  `json:"description"`
	TemperatureMin  float64 `json:"temperatureMin"`
	TemperatureMax  float64 `json:"temperatureMax"`
	WindSpeed       float64 `json:"windSpeed"`
	RainProbability float64 `json:"rainProbability"`
}

// Report is a resolved, normalized forecast ready for rendering.
type Report struct {
	Location LocationCandidate `json:"location"`
	Place    Place             `json:"place"`
	IssuedAt time.Time         `json:"issuedAt"`
	Days     []DaySummary      `json:"days"`
}
