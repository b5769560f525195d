package weather

import (
	"strconv"
	"strings"
	"time"
)

// SlotKey addresses one entry of the provider payload. The provider keys
// its records "<day>_<slot>", e.g. "0_resume", "1_matin" or "0_07-10".
type SlotKey struct {
	Day  int
	Slot string
}

// ParseSlotKey splits a provider key into its day index and slot name.
func ParseSlotKey(key string) (SlotKey, bool) {
	day, slot, found := strings.Cut(key, "_")
	if !found || slot == "" {
		return SlotKey{}, false
	}
	n, err := strconv.Atoi(day)
	if err != nil || n < 0 {
		return SlotKey{}, false
	}
	return SlotKey{Day: n, Slot: slot}, true
}

func (k SlotKey) String() string {
	return strconv.Itoa(k.Day) + "_" + k.Slot
}

// Resume is the provider's one-line daily summary.
type Resume struct {
	Date           time.Time
	Description    string
	TemperatureMin float64
	TemperatureMax float64
}

// Prevision is the provider's coarse per-period forecast.
type Prevision struct {
	Description string
	Temperature float64
	WindSpeed   float64
}

// Prevision48h is the provider's refined 3-hour forecast, only sent for
// the next two calendar days.
type Prevision48h struct {
	Description     string
	TemperatureMin  float64
	TemperatureMax  float64
	WindSpeed       float64
	RainProbability float64
}

// RawForecast is the provider payload decoded once at the boundary into
// typed, day-indexed maps. It is read-only input to Normalize.
type RawForecast struct {
	Place         Place
	Resumes       map[int]Resume
	Previsions    map[SlotKey]Prevision
	Previsions48h map[SlotKey]Prevision48h
}

// NewRawForecast returns an empty payload for place.
func NewRawForecast(place Place) *RawForecast {
	return &RawForecast{
		Place:         place,
		Resumes:       make(map[int]Resume),
		Previsions:    make(map[SlotKey]Prevision),
		Previsions48h: make(map[SlotKey]Prevision48h),
	}
}

// hasDay reports whether the payload holds a resume or any period
// record for day i.
func (r *RawForecast) hasDay(i int) bool {
	if _, ok := r.Resumes[i]; ok {
		return true
	}
	for _, p := range Periods {
		if _, ok := r.Previsions[SlotKey{Day: i, Slot: string(p)}]; ok {
			return true
		}
	}
	return false
}
