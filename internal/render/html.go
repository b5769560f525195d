package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/i474232898/gmet/internal/common"
	"github.com/i474232898/gmet/internal/weather"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var titles = []string{"Date", "Temps", "Température", "Vent", "Pluie (%)"}

var (
	frenchDays   = [...]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}
	frenchMonths = [...]string{"janv.", "févr.", "mars", "avril", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}
)

// HTMLView is the data handed to the page template.
type HTMLView struct {
	Name             string
	DepartmentNumber string
	DepartmentName   string
	Region           string
	Country          string
	GeneratedAt      string
	Titles           []string
	Days             []DayView
	Frequents        []string
}

// DayView is one day row and the period rows below it.
type DayView struct {
	Date           string
	Description    string
	Class          string
	TemperatureMin string
	TemperatureMax string
	TimeRanges     []TimeRangeView
}

// TimeRangeView is a refined bucket ("07-10h") or a coarse period ("matin").
type TimeRangeView struct {
	Label           string
	Description     string
	Temperature     string
	WindSpeed       string
	RainProbability string
}

// HTMLRenderer renders reports as a standalone HTML page.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render writes the page for report. frequents, when not empty, is shown
// as a list of links to other cities.
func (r *HTMLRenderer) Render(w io.Writer, report *weather.Report, frequents []string) error {
	if err := r.tmpl.ExecuteTemplate(w, "forecast.html.tmpl", NewHTMLView(report, frequents)); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// ErrorView is the data of the error page.
type ErrorView struct {
	Status  int
	Message string
}

// RenderError writes a minimal page for a failed request.
func (r *HTMLRenderer) RenderError(w io.Writer, status int, message string) error {
	if err := r.tmpl.ExecuteTemplate(w, "error.html.tmpl", ErrorView{Status: status, Message: message}); err != nil {
		return fmt.Errorf("render error page: %w", err)
	}
	return nil
}

// NewHTMLView flattens report into template data.
func NewHTMLView(report *weather.Report, frequents []string) HTMLView {
	p := report.Place
	view := HTMLView{
		Name:             p.Name,
		DepartmentNumber: p.DepartmentNumber,
		DepartmentName:   p.DepartmentName,
		Region:           p.Region,
		Country:          p.Country,
		GeneratedAt:      report.IssuedAt.Format("15:04 02Jan"),
		Titles:           titles,
		Frequents:        frequents,
	}

	for _, day := range report.Days {
		dv := DayView{
			Date:           frenchDate(day.Date),
			Description:    day.Description,
			Class:          dayClass(day.Description),
			TemperatureMin: num(day.TemperatureMin),
			TemperatureMax: num(day.TemperatureMax),
		}
		for _, period := range day.Periods {
			if period.Refined() {
				for _, b := range period.Buckets {
					dv.TimeRanges = append(dv.TimeRanges, TimeRangeView{
						Label:           b.Label + "h",
						Description:     b.Description,
						Temperature:     num(b.TemperatureMin) + " - " + num(b.TemperatureMax),
						WindSpeed:       num(b.WindSpeed),
						RainProbability: num(b.RainProbability),
					})
				}
				continue
			}
			if c := period.Coarse; c != nil {
				dv.TimeRanges = append(dv.TimeRanges, TimeRangeView{
					Label:       string(period.Name),
					Description: c.Description,
					Temperature: num(c.Temperature),
					WindSpeed:   num(c.WindSpeed),
				})
			}
		}
		view.Days = append(view.Days, dv)
	}

	return view
}

// frenchDate formats t like "lun. - 12 oct.".
func frenchDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s - %02d %s", frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1])
}

func dayClass(description string) string {
	switch {
	case common.HasAnyFold(description, "soleil"):
		return "sun"
	case common.HasAnyFold(description, "pluie", "averse"):
		return "rain"
	default:
		return ""
	}
}
