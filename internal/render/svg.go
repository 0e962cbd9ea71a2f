// Package render produces the SVG streak badge.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"

	"github.com/gitpulse/gitpulse/pkg/streak"
)

const (
	svgWidth  = 495
	svgHeight = 195
)

//go:embed templates/badge.svg.tmpl
var badgeTemplate string

var badgeTmpl = template.Must(template.New("badge").Parse(badgeTemplate))

// BadgeStats is everything the badge displays. The streak results arrive
// pre-computed; this package only formats and lays them out.
type BadgeStats struct {
	Login   string
	Total   int
	Current streak.Result
	Longest streak.Result
	// Today anchors the "total" caption range shown under the count.
	Today time.Time
	// WindowDays is how many trailing days the total covers. Zero means
	// the default 365-day window.
	WindowDays int
}

type badgeViewModel struct {
	Width  int
	Height int

	Login string

	Total      int
	TotalRange string

	CurrentLength int
	CurrentRange  string

	LongestLength int
	LongestRange  string
}

// Badge renders the streak badge as SVG bytes. All text fields are escaped
// by the template, so a hostile login cannot inject markup into the SVG.
func Badge(stats BadgeStats) ([]byte, error) {
	window := stats.WindowDays
	if window <= 0 {
		window = 365
	}

	vm := badgeViewModel{
		Width:         svgWidth,
		Height:        svgHeight,
		Login:         stats.Login,
		Total:         stats.Total,
		TotalRange:    fmt.Sprintf("%s - Present", stats.Today.AddDate(0, 0, -(window-1)).Format("Jan 2, 2006")),
		CurrentLength: stats.Current.Length,
		CurrentRange:  formatRange(stats.Current),
		LongestLength: stats.Longest.Length,
		LongestRange:  formatRange(stats.Longest),
	}

	var buf bytes.Buffer
	if err := badgeTmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("render badge: %w", err)
	}
	return buf.Bytes(), nil
}

// formatRange renders a streak's date span for the badge caption.
func formatRange(r streak.Result) string {
	if r.Length == 0 {
		return "No activity"
	}
	if r.Start.Equal(r.End) {
		return r.End.Format("Jan 2, 2006")
	}
	if r.Start.Year() == r.End.Year() {
		return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2"), r.End.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", r.Start.Format("Jan 2, 2006"), r.End.Format("Jan 2, 2006"))
}
