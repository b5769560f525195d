package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/i474232898/gmet/internal/common"
	"github.com/i474232898/gmet/internal/weather"
)

// ANSI color codes
const (
	colorFlash  = "\033[7;1m"
	colorGreen  = "\033[32;1m"
	colorOrange = "\033[33;1m"
	colorBlue   = "\033[34;1m"
	colorReset  = "\033[0m"
)

// Mode selects which days are printed and how much detail they get.
type Mode int

const (
	// ModeRange prints the days in [From, To] with their periods.
	ModeRange Mode = iota
	// ModeSummary prints every day with its periods.
	ModeSummary
	// ModeCondensed prints every day, one line each.
	ModeCondensed
)

// ModeFromSummaryCount maps the number of --summary flags to a Mode.
func ModeFromSummaryCount(n int) Mode {
	switch {
	case n <= 0:
		return ModeRange
	case n == 1:
		return ModeSummary
	default:
		return ModeCondensed
	}
}

// TerminalOptions controls the terminal output.
type TerminalOptions struct {
	From  int
	To    int
	Mode  Mode
	Color bool
}

// TerminalReport renders report as terminal lines, starting with a
// highlighted header naming the place.
func TerminalReport(report *weather.Report, opts TerminalOptions) []string {
	p := report.Place
	header := fmt.Sprintf("-- Meteo forecast -- %s (%s - %s) --", p.Name, p.DepartmentNumber, p.Country) + strings.Repeat(" ", 24)
	lines := []string{paint(opts.Color, colorFlash, header)}
	return append(lines, TerminalLines(report.Days, opts)...)
}

// TerminalLines renders the selected days. It has no side effects: the
// same input always gives the same lines.
func TerminalLines(days []weather.DaySummary, opts TerminalOptions) []string {
	var lines []string
	for _, day := range days {
		if opts.Mode == ModeRange && (day.DayIndex < opts.From || day.DayIndex > opts.To) {
			continue
		}

		lines = append(lines, paint(opts.Color, dayColor(day.Description), fmt.Sprintf("%s | %-17s | T: %2s-%2s",
			day.Date.UTC().Format("Mon-02Jan"),
			day.Description,
			num(day.TemperatureMin),
			num(day.TemperatureMax),
		)))

		if opts.Mode == ModeCondensed {
			continue
		}

		for _, p := range day.Periods {
			lines = append(lines, periodLines(p)...)
		}
	}
	return lines
}

func periodLines(p weather.PeriodForecast) []string {
	if !p.Refined() {
		c := p.Coarse
		if c == nil {
			return nil
		}
		return []string{fmt.Sprintf(" -> %5s | %-17s | T: %s| V: %-3s",
			string(p.Name), c.Description, center(num(c.Temperature), 6), num(c.WindSpeed))}
	}

	lines := make([]string, 0, len(p.Buckets))
	for _, b := range p.Buckets {
		lines = append(lines, fmt.Sprintf(" * %5sh | %-17s | T: %2s-%2s | V: %-3s Pluie?: %2s%%",
			b.Label, b.Description, num(b.TemperatureMin), num(b.TemperatureMax), num(b.WindSpeed), num(b.RainProbability)))
	}
	return lines
}

// dayColor picks blue for rain, orange for sun and green otherwise.
// Sun wins when both are mentioned.
func dayColor(description string) string {
	switch {
	case common.HasAnyFold(description, "soleil"):
		return colorOrange
	case common.HasAnyFold(description, "pluie", "averse"):
		return colorBlue
	default:
		return colorGreen
	}
}

func paint(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + colorReset
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
