package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/i474232898/gmet/internal/config"
	"github.com/i474232898/gmet/internal/render"
	"github.com/i474232898/gmet/internal/weather"
	"github.com/i474232898/gmet/internal/weather/providers"
)

const (
	appName    = "gmet"
	appVersion = "0.9.0"
)

// options holds the parsed command line.
type options struct {
	Offsets     []int  `validate:"dive,min=0"`
	City        string `validate:"omitempty,max=100"`
	InseeCode   string `validate:"omitempty,numeric"`
	Summary     int
	LogLevel    string `validate:"oneof=CRITICAL ERROR WARNING INFO DEBUG"`
	LogLevelSet bool   // --log given explicitly; otherwise GMET_LOG_LEVEL applies
	HTML        bool
	Terminal    bool
	Version     bool
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// runMain parses args, wires the providers and runs one request. It
// returns the process exit code.
func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}
	if opts.Version {
		fmt.Fprintf(stdout, "%s %s\n", appName, appVersion)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to load config: %v\n", appName, err)
		return 1
	}

	lg := cfg.NewLogger(stderr, false)
	slog.SetDefault(lg)

	httpCfg := providers.NewHTTPClientConfig(cfg.HTTPTimeout, cfg.UpstreamRPS, cfg.UpstreamBurst)
	meteo := providers.NewMeteoFranceProvider(httpCfg, cfg.LookupURL, cfg.ForecastURL)
	geo := providers.NewIPInfoProvider(httpCfg, cfg.GeoIPURL)

	c := &cli{
		service:    weather.NewService(meteo, meteo, geo, lg),
		logger:     lg,
		stdout:     stdout,
		color:      isTerminal(stdout),
		htmlOutput: cfg.HTMLOutput,
		openHTML:   browserOpener(cfg.Browser),
		now:        time.Now,
	}

	return c.run(ctx, opts)
}

// loadConfig reads the environment configuration. An explicit --log flag
// overrides GMET_LOG_LEVEL.
func loadConfig(opts *options) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.LogLevelSet {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseArgs parses the command line. The two-letter -ic shorthand is kept
// for compatibility and rewritten to --inseecode.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [offset...]\n\n", appName)
		fmt.Fprintln(stderr, "Command line utility to access Meteo-France forecasts.")
		fmt.Fprintln(stderr, "offset: days from today to display, i.e. 0 means today, 1 means tomorrow,...")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	var noTerm bool
	fs.StringVarP(&opts.City, "city", "c", "", "the city name to forecast; guessed from the geolocated IP address when empty")
	fs.StringVar(&opts.InseeCode, "inseecode", "", "the INSEE code of the city, to pick one city when the name matches several (-ic)")
	fs.CountVarP(&opts.Summary, "summary", "s", "summary view of every forecast day; twice for one line per day")
	fs.StringVarP(&opts.LogLevel, "log", "l", "INFO", "log level: CRITICAL, ERROR, WARNING, INFO or DEBUG")
	fs.BoolVar(&opts.HTML, "html", false, "write the forecast as an HTML page and open it in the browser")
	fs.BoolVar(&noTerm, "noterm", false, "do not write the forecast to stdout")
	fs.BoolVarP(&opts.Version, "version", "v", false, "print the version and exit")

	if err := fs.Parse(rewriteLegacyFlags(args)); err != nil {
		return nil, err
	}
	opts.Terminal = !noTerm
	opts.LogLevelSet = fs.Changed("log")
	opts.LogLevel = strings.ToUpper(opts.LogLevel)

	for _, a := range fs.Args() {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: must be an integer", a)
		}
		opts.Offsets = append(opts.Offsets, n)
	}

	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return opts, nil
}

func rewriteLegacyFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch {
		case a == "--":
			return append(out, args[len(out):]...)
		case a == "-ic":
			a = "--inseecode"
		case strings.HasPrefix(a, "-ic="):
			a = "--inseecode=" + strings.TrimPrefix(a, "-ic=")
		}
		out = append(out, a)
	}
	return out
}

// dayRange returns the inclusive range of day offsets to display. Without
// offsets it is today, plus tomorrow once it is past 16h.
func dayRange(offsets []int, now time.Time) (from, to int) {
	if len(offsets) == 0 {
		if now.Hour() > 16 {
			return 0, 1
		}
		return 0, 0
	}
	from, to = offsets[0], offsets[0]
	for _, o := range offsets[1:] {
		from = min(from, o)
		to = max(to, o)
	}
	return from, to
}

type cli struct {
	service    *weather.Service
	logger     *slog.Logger
	stdout     io.Writer
	color      bool
	htmlOutput string
	openHTML   func(path string) error
	now        func() time.Time
}

// run executes one forecast request and returns the process exit code.
func (c *cli) run(ctx context.Context, opts *options) int {
	city := opts.City
	if city == "" {
		c.logger.Debug("no city, trying to localize")
		geo, err := c.service.Locate(ctx, "")
		if err != nil {
			c.logger.Error("could not guess the city from the IP address, use --city", "error", err)
			return 1
		}
		city = geo.City
	}

	report, err := c.service.ForecastCity(ctx, city, opts.InseeCode)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrUnknownCity):
			c.logger.Error("unknown input city name", "city", city)
		case errors.Is(err, weather.ErrIncompatibleCode):
			c.logger.Error("input insee code is not compatible with city name", "city", city, "insee", opts.InseeCode)
		default:
			c.logger.Error("forecast unavailable", "city", city, "error", err)
		}
		return 1
	}

	if opts.Terminal {
		from, to := dayRange(opts.Offsets, c.now())
		lines := render.TerminalReport(report, render.TerminalOptions{
			From:  from,
			To:    to,
			Mode:  render.ModeFromSummaryCount(opts.Summary),
			Color: c.color,
		})
		for _, line := range lines {
			fmt.Fprintln(c.stdout, line)
		}
	}

	if opts.HTML {
		if err := c.writeHTML(report); err != nil {
			c.logger.Error("failed to write html output", "error", err)
			return 1
		}
	}

	return 0
}

func (c *cli) writeHTML(report *weather.Report) error {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return err
	}

	f, err := os.Create(c.htmlOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", c.htmlOutput, err)
	}
	if err := renderer.Render(f, report, nil); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c.htmlOutput, err)
	}

	if c.openHTML != nil {
		if err := c.openHTML(c.htmlOutput); err != nil {
			c.logger.Warn("could not open the browser", "file", c.htmlOutput, "error", err)
		}
	}
	return nil
}

func browserOpener(command string) func(string) error {
	if command == "" {
		return nil
	}
	return func(path string) error {
		return exec.Command(command, path).Start()
	}
}
