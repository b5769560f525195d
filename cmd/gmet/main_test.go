package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/gmet/internal/weather"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		want        *options
		errContains string
	}{
		{
			name: "defaults",
			want: &options{LogLevel: "INFO", Terminal: true},
		},
		{
			name: "legacy insee shorthand and offsets",
			args: []string{"-c", "Paris", "-ic", "751010", "2", "0"},
			want: &options{City: "Paris", InseeCode: "751010", Offsets: []int{2, 0}, LogLevel: "INFO", Terminal: true},
		},
		{
			name: "legacy insee with value",
			args: []string{"--city=Biot", "-ic=060180"},
			want: &options{City: "Biot", InseeCode: "060180", LogLevel: "INFO", Terminal: true},
		},
		{
			name: "counted summary and html only",
			args: []string{"-ss", "--html", "--noterm", "--log", "debug"},
			want: &options{Summary: 2, HTML: true, LogLevel: "DEBUG", LogLevelSet: true},
		},
		{name: "non integer offset", args: []string{"tomorrow"}, errContains: "invalid offset"},
		{name: "negative offset", args: []string{"--", "-1"}, errContains: "invalid arguments"},
		{name: "unknown log level", args: []string{"-l", "LOUD"}, errContains: "invalid arguments"},
		{name: "non numeric insee", args: []string{"-ic", "75A"}, errContains: "invalid arguments"},
		{name: "unknown flag", args: []string{"--days", "3"}, errContains: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, io.Discard)
			if tt.errContains != "" {
				if err == nil {
					t.Fatalf("parseArgs() expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs() unexpected error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig_LogLevel(t *testing.T) {
	t.Setenv("GMET_LOG_LEVEL", "DEBUG")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "environment when flag absent", want: "DEBUG"},
		{name: "explicit flag wins", args: []string{"-l", "error"}, want: "ERROR"},
		{name: "explicit default value wins", args: []string{"--log=INFO"}, want: "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseArgs() unexpected error = %v", err)
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				t.Fatalf("loadConfig() unexpected error = %v", err)
			}
			if cfg.LogLevel != tt.want {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, tt.want)
			}
		})
	}
}

func TestRunMain_VersionIgnoresConfig(t *testing.T) {
	t.Setenv("GMET_HTTP_TIMEOUT", "soon")

	var stdout, stderr bytes.Buffer
	if code := runMain(context.Background(), []string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("runMain(--version) = %d, want 0; stderr: %s", code, stderr.String())
	}
	if got := stdout.String(); got != "gmet 0.9.0\n" {
		t.Errorf("stdout = %q, want version line", got)
	}

	stdout.Reset()
	stderr.Reset()
	if code := runMain(context.Background(), []string{"-c", "Biot"}, &stdout, &stderr); code != 1 {
		t.Fatalf("runMain() = %d, want 1 on bad config", code)
	}
	if !strings.Contains(stderr.String(), "HTTP_TIMEOUT") {
		t.Errorf("stderr = %q, want the config error", stderr.String())
	}
}

func TestRunMain_BadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := runMain(context.Background(), []string{"--days", "3"}, &stdout, &stderr); code != 2 {
		t.Fatalf("runMain() = %d, want 2", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", stdout.String())
	}
}

func TestRewriteLegacyFlags(t *testing.T) {
	got := rewriteLegacyFlags([]string{"-ic", "1", "-ic=2", "--", "-ic"})
	want := []string{"--inseecode", "1", "--inseecode=2", "--", "-ic"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rewriteLegacyFlags() = %q, want %q", got, want)
	}
}

func TestDayRange(t *testing.T) {
	morning := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 17, 17, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		offsets  []int
		now      time.Time
		from, to int
	}{
		{name: "today", now: morning, from: 0, to: 0},
		{name: "evening adds tomorrow", now: evening, from: 0, to: 1},
		{name: "single offset", offsets: []int{3}, now: evening, from: 3, to: 3},
		{name: "unordered offsets", offsets: []int{4, 1, 2}, now: morning, from: 1, to: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := dayRange(tt.offsets, tt.now)
			if from != tt.from || to != tt.to {
				t.Errorf("dayRange() = %d-%d, want %d-%d", from, to, tt.from, tt.to)
			}
		})
	}
}

type stubLookup map[string][]weather.LocationCandidate

func (s stubLookup) Lookup(_ context.Context, city string) ([]weather.LocationCandidate, error) {
	return s[city], nil
}

type stubForecasts struct{ err error }

func (s stubForecasts) FetchForecast(context.Context, string) (*weather.RawForecast, error) {
	if s.err != nil {
		return nil, s.err
	}
	raw := weather.NewRawForecast(weather.Place{Name: "Biot", DepartmentNumber: "06", Country: "FR"})
	for i, desc := range []string{"Ensoleillé", "Averses"} {
		raw.Resumes[i] = weather.Resume{
			Date:           time.Date(2026, 10, 17+i, 0, 0, 0, 0, time.UTC),
			Description:    desc,
			TemperatureMin: 10,
			TemperatureMax: 20,
		}
	}
	raw.Previsions[weather.SlotKey{Day: 0, Slot: "soir"}] = weather.Prevision{Description: "Clair", Temperature: 15, WindSpeed: 5}
	return raw, nil
}

type stubGeolocator struct{ geo weather.Geolocation }

func (s stubGeolocator) Locate(context.Context, string) (weather.Geolocation, error) {
	return s.geo, nil
}

func newTestCLI(t *testing.T, forecastErr error, geo weather.Geolocation) (*cli, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	var stdout, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	lookup := stubLookup{"Biot": {{Code: "060180", Name: "Biot", PostalCode: "06410"}}}

	return &cli{
		service:    weather.NewService(lookup, stubForecasts{err: forecastErr}, stubGeolocator{geo: geo}, logger),
		logger:     logger,
		stdout:     &stdout,
		htmlOutput: filepath.Join(t.TempDir(), "output.html"),
		now:        func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) },
	}, &stdout, &logs
}

func TestCLI_Run(t *testing.T) {
	c, stdout, _ := newTestCLI(t, nil, weather.Geolocation{})

	code := c.run(context.Background(), &options{City: "Biot", Terminal: true})
	if code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "-- Meteo forecast -- Biot (06 - FR) --") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Sat-17Oct | Ensoleillé") {
		t.Errorf("day line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], " ->  soir | Clair") {
		t.Errorf("period line = %q", lines[2])
	}
}

func TestCLI_RunGeolocated(t *testing.T) {
	c, stdout, _ := newTestCLI(t, nil, weather.Geolocation{IP: "90.1.2.3", City: "Biot"})

	if code := c.run(context.Background(), &options{Terminal: true, Summary: 2}); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Sun-18Oct | Averses") {
		t.Errorf("condensed output misses day 1:\n%s", stdout)
	}
}

func TestCLI_RunFailures(t *testing.T) {
	tests := []struct {
		name        string
		opts        *options
		forecastErr error
		geo         weather.Geolocation
		logContains string
	}{
		{name: "unknown city", opts: &options{City: "Atlantis", Terminal: true}, logContains: "unknown input city name"},
		{name: "incompatible code", opts: &options{City: "Biot", InseeCode: "751010", Terminal: true}, logContains: "not compatible"},
		{
			name:        "remote unavailable",
			opts:        &options{City: "Biot", Terminal: true},
			forecastErr: weather.ErrRemoteUnavailable,
			logContains: "forecast unavailable",
		},
		{
			name:        "bogon geolocation",
			opts:        &options{Terminal: true},
			geo:         weather.Geolocation{IP: "10.0.0.1", Bogon: true},
			logContains: "use --city",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, stdout, logs := newTestCLI(t, tt.forecastErr, tt.geo)

			if code := c.run(context.Background(), tt.opts); code != 1 {
				t.Fatalf("run() = %d, want 1", code)
			}
			if stdout.Len() != 0 {
				t.Errorf("stdout not empty on failure: %q", stdout)
			}
			if !strings.Contains(logs.String(), tt.logContains) {
				t.Errorf("logs %q do not contain %q", logs, tt.logContains)
			}
		})
	}
}

func TestCLI_RunHTML(t *testing.T) {
	c, stdout, logs := newTestCLI(t, nil, weather.Geolocation{})

	var opened string
	c.openHTML = func(path string) error {
		opened = path
		return errors.New("no browser")
	}

	if code := c.run(context.Background(), &options{City: "Biot", HTML: true}); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if stdout.Len() != 0 {
		t.Errorf("terminal output written with --noterm: %q", stdout)
	}
	if opened != c.htmlOutput {
		t.Errorf("opened %q, want %q", opened, c.htmlOutput)
	}
	if !strings.Contains(logs.String(), "could not open the browser") {
		t.Errorf("browser failure not logged: %q", logs)
	}

	page, err := os.ReadFile(c.htmlOutput)
	if err != nil {
		t.Fatalf("read html output: %v", err)
	}
	if !strings.Contains(string(page), "<title>Météo Biot</title>") {
		t.Errorf("unexpected page:\n%s", page)
	}
}
