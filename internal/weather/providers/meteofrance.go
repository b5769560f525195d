package providers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/gmet/internal/weather"
)

// Sample requests:
//
//	http://ws.meteofrance.com/ws/getLieux/biot.json
//	http://ws.meteofrance.com/ws/getDetail/france/060180.json
const (
	DefaultLookupURL   = "http://ws.meteofrance.com/ws/getLieux/"
	DefaultForecastURL = "http://ws.meteofrance.com/ws/getDetail/france/"
)

// MeteoFranceProvider implements weather.CityLookup and
// weather.ForecastProvider against the Météo-France web services.
type MeteoFranceProvider struct {
	lookupURL   string
	forecastURL string
	httpCfg     HTTPClientConfig
	lookupCB    *gobreaker.CircuitBreaker
	forecastCB  *gobreaker.CircuitBreaker
}

func NewMeteoFranceProvider(httpCfg HTTPClientConfig, lookupURL, forecastURL string) *MeteoFranceProvider {
	if lookupURL == "" {
		lookupURL = DefaultLookupURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	return &MeteoFranceProvider{
		lookupURL:   withTrailingSlash(lookupURL),
		forecastURL: withTrailingSlash(forecastURL),
		httpCfg:     httpCfg,
		lookupCB:    newCircuitBreaker("meteofrance-lookup"),
		forecastCB:  newCircuitBreaker("meteofrance-forecast"),
	}
}

type lieuxResponse struct {
	Result struct {
		France []struct {
			Indicatif  string `json:"indicatif"`
			Nom        string `json:"nom"`
			CodePostal string `json:"codePostal"`
			NomDept    string `json:"nomDept"`
			NumDept    string `json:"numDept"`
			Pays       string `json:"pays"`
		} `json:"france"`
	} `json:"result"`
}

// Lookup returns the communes matching city, in the order the service
// sent them.
func (p *MeteoFranceProvider) Lookup(ctx context.Context, city string) ([]weather.LocationCandidate, error) {
	var payload lieuxResponse
	if err := getJSON(ctx, p.httpCfg, p.lookupCB, p.lookupURL+url.PathEscape(city)+".json", &payload); err != nil {
		return nil, err
	}

	out := make([]weather.LocationCandidate, 0, len(payload.Result.France))
	for _, e := range payload.Result.France {
		out = append(out, weather.LocationCandidate{
			Code:             e.Indicatif,
			Name:             e.Nom,
			PostalCode:       e.CodePostal,
			DepartmentName:   e.NomDept,
			DepartmentNumber: e.NumDept,
			Country:          e.Pays,
		})
	}
	return out, nil
}

type detailResponse struct {
	Result struct {
		Ville struct {
			Nom     string `json:"nom"`
			NumDept string `json:"numDept"`
			NomDept string `json:"nomDept"`
			Region  string `json:"region"`
			Pays    string `json:"pays"`
		} `json:"ville"`
		Resumes map[string]struct {
			Date           number `json:"date"`
			Description    string `json:"description"`
			TemperatureMin number `json:"temperatureMin"`
			TemperatureMax number `json:"temperatureMax"`
		} `json:"resumes"`
		Previsions map[string]struct {
			Description      string `json:"description"`
			TemperatureCarte number `json:"temperatureCarte"`
			VitesseVent      number `json:"vitesseVent"`
		} `json:"previsions"`
		Previsions48h map[string]struct {
			Description    string `json:"description"`
			TemperatureMin number `json:"temperatureMin"`
			TemperatureMax number `json:"temperatureMax"`
			VitesseVent    number `json:"vitesseVent"`
			ProbaPluie     number `json:"probaPluie"`
		} `json:"previsions48h"`
	} `json:"result"`
}

// FetchForecast downloads the detailed forecast for an INSEE code and
// decodes its "<day>_<slot>" keys into a weather.RawForecast. Keys that do
// not follow that convention are ignored.
func (p *MeteoFranceProvider) FetchForecast(ctx context.Context, code string) (*weather.RawForecast, error) {
	var payload detailResponse
	if err := getJSON(ctx, p.httpCfg, p.forecastCB, p.forecastURL+url.PathEscape(code)+".json", &payload); err != nil {
		return nil, err
	}

	v := payload.Result.Ville
	raw := weather.NewRawForecast(weather.Place{
		Name:             v.Nom,
		DepartmentNumber: v.NumDept,
		DepartmentName:   v.NomDept,
		Region:           v.Region,
		Country:          v.Pays,
	})

	for key, r := range payload.Result.Resumes {
		k, ok := weather.ParseSlotKey(key)
		if !ok || k.Slot != "resume" {
			continue
		}
		raw.Resumes[k.Day] = weather.Resume{
			Date:           time.UnixMilli(int64(r.Date)).UTC(),
			Description:    r.Description,
			TemperatureMin: float64(r.TemperatureMin),
			TemperatureMax: float64(r.TemperatureMax),
		}
	}

	for key, r := range payload.Result.Previsions {
		k, ok := weather.ParseSlotKey(key)
		if !ok {
			continue
		}
		raw.Previsions[k] = weather.Prevision{
			Description: r.Description,
			Temperature: float64(r.TemperatureCarte),
			WindSpeed:   float64(r.VitesseVent),
		}
	}

	for key, r := range payload.Result.Previsions48h {
		k, ok := weather.ParseSlotKey(key)
		if !ok {
			continue
		}
		raw.Previsions48h[k] = weather.Prevision48h{
			Description:     r.Description,
			TemperatureMin:  float64(r.TemperatureMin),
			TemperatureMax:  float64(r.TemperatureMax),
			WindSpeed:       float64(r.VitesseVent),
			RainProbability: float64(r.ProbaPluie),
		}
	}

	return raw, nil
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
