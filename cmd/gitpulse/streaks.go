package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/pkg/streak"
)

func newStreaksCmd() *cobra.Command {
	var (
		user      string
		window    int
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "streaks",
		Short: "Print contribution streaks without rendering a badge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreaks(cmd.Context(), streaksOpts{
				user:      user,
				window:    window,
				outputFmt: outputFmt,
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "GitHub username (default: from config)")
	cmd.Flags().IntVar(&window, "window-days", 0, "Days of history to consider (default: from config)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

type streaksOpts struct {
	user      string
	window    int
	outputFmt string
}

type streakReport struct {
	User    string      `json:"user"`
	Total   int         `json:"total_contributions"`
	Current streakRange `json:"current_streak"`
	Longest streakRange `json:"longest_streak"`
}

type streakRange struct {
	Length int    `json:"length"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

func runStreaks(ctx context.Context, opts streaksOpts) error {
	cfg := loadConfig()

	user := firstNonEmpty(opts.user, cfg.GitHub.Username)
	if user == "" {
		return fmt.Errorf("no user given: set --user or github.username in the config")
	}

	window := opts.window
	if window <= 0 {
		window = cfg.Badge.WindowDays
	}

	client := newGitHubClient(cfg)
	today := time.Now().UTC()

	series, total, err := client.ContributionCalendar(ctx, user, today.AddDate(0, 0, -(window-1)), today)
	if err != nil {
		return fmt.Errorf("fetching contributions: %w", err)
	}

	current := streak.Current(series, total, today)
	longest := streak.Longest(series)

	if opts.outputFmt == "json" {
		report := streakReport{
			User:    user,
			Total:   total,
			Current: toRange(current),
			Longest: toRange(longest),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("%s over the last %d days\n", user, window)
	fmt.Printf("  Total contributions: %d\n", total)
	fmt.Printf("  Current streak:      %s\n", describe(current))
	fmt.Printf("  Longest streak:      %s\n", describe(longest))
	return nil
}

func toRange(r streak.Result) streakRange {
	out := streakRange{Length: r.Length}
	if r.Length > 0 {
		out.Start = r.Start.Format("2006-01-02")
		out.End = r.End.Format("2006-01-02")
	}
	return out
}

func describe(r streak.Result) string {
	if r.Length == 0 {
		return "none"
	}
	return fmt.Sprintf("%d day(s), %s to %s",
		r.Length, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}
