package render

import (
	"strings"
	"testing"
	"time"

	"github.com/gitpulse/gitpulse/pkg/streak"
)

var today = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func TestBadge(t *testing.T) {
	svg, err := Badge(BadgeStats{
		Login: "octocat",
		Total: 1234,
		Current: streak.Result{
			Length: 4,
			Start:  today.AddDate(0, 0, -3),
			End:    today,
		},
		Longest: streak.Result{
			Length: 21,
			Start:  time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC),
		},
		Today: today,
	})
	if err != nil {
		t.Fatalf("Badge: %v", err)
	}

	out := string(svg)
	for _, want := range []string{
		"<svg",
		"octocat",
		">1234<",
		">4<",
		">21<",
		"Total Contributions",
		"Current Streak",
		"Longest Streak",
		"Mar 12 - Mar 15, 2026",
		"Nov 1 - Nov 21, 2025",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("badge SVG missing %q", want)
		}
	}
}

func TestBadgeEmptySeries(t *testing.T) {
	svg, err := Badge(BadgeStats{Login: "octocat", Today: today})
	if err != nil {
		t.Fatalf("Badge: %v", err)
	}

	out := string(svg)
	if !strings.Contains(out, "No activity") {
		t.Error("empty streaks should render the no-activity caption")
	}
	if !strings.Contains(out, ">0<") {
		t.Error("empty badge should still show zero counts")
	}
}

func TestBadgeEscapesLogin(t *testing.T) {
	svg, err := Badge(BadgeStats{
		Login: `</text><script>alert(1)</script><text>`,
		Today: today,
	})
	if err != nil {
		t.Fatalf("Badge: %v", err)
	}

	out := string(svg)
	if strings.Contains(out, "<script>") {
		t.Error("login markup reached the SVG unescaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("login should be rendered as escaped text")
	}
}

func TestBadgeTotalRangeFollowsWindow(t *testing.T) {
	svg, err := Badge(BadgeStats{Login: "octocat", Today: today, WindowDays: 30})
	if err != nil {
		t.Fatalf("Badge: %v", err)
	}

	// 30 trailing days ending Mar 15 start on Feb 14.
	if !strings.Contains(string(svg), "Feb 14, 2026 - Present") {
		t.Error("total caption should cover the configured window")
	}

	svg, err = Badge(BadgeStats{Login: "octocat", Today: today})
	if err != nil {
		t.Fatalf("Badge: %v", err)
	}
	if !strings.Contains(string(svg), "Mar 16, 2025 - Present") {
		t.Error("total caption should default to a 365-day window")
	}
}

func TestFormatRange(t *testing.T) {
	tests := []struct {
		name   string
		result streak.Result
		want   string
	}{
		{
			name:   "empty",
			result: streak.Result{},
			want:   "No activity",
		},
		{
			name: "single day",
			result: streak.Result{
				Length: 1,
				Start:  today,
				End:    today,
			},
			want: "Mar 15, 2026",
		},
		{
			name: "same year",
			result: streak.Result{
				Length: 3,
				Start:  today.AddDate(0, 0, -2),
				End:    today,
			},
			want: "Mar 13 - Mar 15, 2026",
		},
		{
			name: "spans a year boundary",
			result: streak.Result{
				Length: 5,
				Start:  time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC),
				End:    time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
			},
			want: "Dec 30, 2025 - Jan 3, 2026",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatRange(tc.result); got != tc.want {
				t.Errorf("formatRange = %q, want %q", got, tc.want)
			}
		})
	}
}
