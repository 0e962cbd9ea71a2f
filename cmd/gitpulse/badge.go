package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/artifact"
	"github.com/gitpulse/gitpulse/internal/github"
	"github.com/gitpulse/gitpulse/internal/render"
	"github.com/gitpulse/gitpulse/pkg/config"
	"github.com/gitpulse/gitpulse/pkg/streak"
)

func newBadgeCmd() *cobra.Command {
	var (
		user    string
		output  string
		window  int
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Render the contribution streak badge",
		Long:  `Fetches the contribution calendar, computes streaks, and writes the SVG badge.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBadge(cmd.Context(), badgeOpts{
				user:    user,
				output:  output,
				window:  window,
				publish: publish,
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "GitHub username (default: from config)")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default: from config)")
	cmd.Flags().IntVar(&window, "window-days", 0, "Days of history to consider (default: from config)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also publish the badge to the configured storage backend")

	return cmd
}

type badgeOpts struct {
	user    string
	output  string
	window  int
	publish bool
}

func runBadge(ctx context.Context, opts badgeOpts) error {
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

	fmt.Fprintf(os.Stderr, "Fetching contribution calendar for %s...\n", user)
	series, total, err := client.ContributionCalendar(ctx, user, today.AddDate(0, 0, -(window-1)), today)
	if err != nil {
		return fmt.Errorf("fetching contributions: %w", err)
	}

	current := streak.Current(series, total, today)
	longest := streak.Longest(series)

	svg, err := render.Badge(render.BadgeStats{
		Login:      user,
		Total:      total,
		Current:    current,
		Longest:    longest,
		Today:      today,
		WindowDays: window,
	})
	if err != nil {
		return fmt.Errorf("rendering badge: %w", err)
	}

	outPath := firstNonEmpty(opts.output, cfg.Badge.Output)
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, svg, 0o644); err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}

	if opts.publish {
		store, err := storeFromConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("configuring storage: %w", err)
		}
		if err := store.PutBadge(ctx, user, "streak", svg); err != nil {
			return fmt.Errorf("publishing badge: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Badge published via %s backend\n", cfg.Storage.Backend)
	}

	fmt.Fprintf(os.Stderr, "Badge saved to %s\n", outPath)
	fmt.Fprintf(os.Stderr, "  Contributions: %d\n", total)
	fmt.Fprintf(os.Stderr, "  Current:       %d day(s)\n", current.Length)
	fmt.Fprintf(os.Stderr, "  Longest:       %d day(s)\n", longest.Length)

	return nil
}

// storeFromConfig builds the badge store selected by the config.
func storeFromConfig(ctx context.Context, cfg *config.Config) (artifact.Store, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return artifact.NewLocalStore(firstNonEmpty(cfg.Storage.LocalDir, config.BadgeDir())), nil
	case "s3":
		return artifact.NewS3Store(ctx, artifact.S3Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
	case "gcs":
		return artifact.NewGCSStore(ctx, cfg.Storage.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newGitHubClient(cfg *config.Config) *github.Client {
	token := os.Getenv("GH_PAT")
	if token == "" {
		fmt.Fprintln(os.Stderr, "Warning: GH_PAT not set, using unauthenticated GitHub API (rate limited)")
	}
	return github.NewClient(github.Options{
		BaseURL:           cfg.GitHub.APIBaseURL,
		Token:             token,
		Timeout:           time.Duration(cfg.GitHub.Timeout) * time.Second,
		RequestsPerSecond: cfg.GitHub.RequestsPerSecond,
	})
}

func loadConfig() *config.Config {
	cwd, err := os.Getwd()
	if err != nil {
		return config.DefaultConfig()
	}
	cfgFile := config.FindConfigFile(cwd)
	if cfgFile == "" {
		return config.DefaultConfig()
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
