package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitpulse/gitpulse/internal/hooks"
)

func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage activity webhooks on owned repositories",
	}

	cmd.AddCommand(
		newHooksSetupCmd(),
		newHooksListCmd(),
	)

	return cmd
}

func newHooksSetupCmd() *cobra.Command {
	var (
		url         string
		trackerRepo string
		events      []string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the activity webhook on every owned repository",
		Long: `Walks all repositories owned by the authenticated user and registers the
activity webhook on each one that does not already have it. The tracker
repository holding the rendered badge is always skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksSetup(cmd.Context(), url, trackerRepo, events)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Webhook delivery URL (default: from config)")
	cmd.Flags().StringVar(&trackerRepo, "tracker-repo", "", "Badge repository to skip (default: from config)")
	cmd.Flags().StringSliceVar(&events, "events", nil, "Events to subscribe to (default: from config)")

	return cmd
}

func runHooksSetup(ctx context.Context, url, trackerRepo string, events []string) error {
	cfg := loadConfig()

	opts := hooks.Options{
		URL:         firstNonEmpty(url, cfg.Hooks.URL),
		Secret:      os.Getenv("WEBHOOK_SECRET"),
		Events:      cfg.Hooks.Events,
		TrackerRepo: firstNonEmpty(trackerRepo, cfg.Hooks.TrackerRepo),
	}
	if len(events) > 0 {
		opts.Events = events
	}

	reg := hooks.NewRegistrar(newGitHubClient(cfg))

	summary, err := reg.Setup(ctx, opts)
	if err != nil {
		return fmt.Errorf("webhook setup: %w", err)
	}

	for _, name := range summary.Hooked {
		fmt.Fprintf(os.Stderr, "  hooked  %s\n", name)
	}
	for _, name := range summary.Skipped {
		fmt.Fprintf(os.Stderr, "  ok      %s (already hooked)\n", name)
	}
	for _, name := range summary.Failed {
		fmt.Fprintf(os.Stderr, "  failed  %s\n", name)
	}
	fmt.Fprintf(os.Stderr, "Webhook setup complete: %d hooked, %d already hooked, %d failed\n",
		len(summary.Hooked), len(summary.Skipped), len(summary.Failed))

	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d repositories failed, check token permissions", len(summary.Failed))
	}
	return nil
}

func newHooksListCmd() *cobra.Command {
	var (
		url         string
		trackerRepo string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show which owned repositories already deliver to the webhook URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksList(cmd.Context(), url, trackerRepo)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Webhook delivery URL (default: from config)")
	cmd.Flags().StringVar(&trackerRepo, "tracker-repo", "", "Badge repository to skip (default: from config)")

	return cmd
}

func runHooksList(ctx context.Context, url, trackerRepo string) error {
	cfg := loadConfig()

	hookURL := firstNonEmpty(url, cfg.Hooks.URL)
	if hookURL == "" {
		return fmt.Errorf("no webhook URL given: set --url or hooks.url in the config")
	}

	reg := hooks.NewRegistrar(newGitHubClient(cfg))

	summary, err := reg.Audit(ctx, hookURL, firstNonEmpty(trackerRepo, cfg.Hooks.TrackerRepo))
	if err != nil {
		return fmt.Errorf("webhook audit: %w", err)
	}

	for _, name := range summary.Hooked {
		fmt.Printf("  hooked   %s\n", name)
	}
	for _, name := range summary.Skipped {
		fmt.Printf("  missing  %s\n", name)
	}
	for _, name := range summary.Failed {
		fmt.Printf("  error    %s\n", name)
	}
	return nil
}
