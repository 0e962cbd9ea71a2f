// Package hooks registers gitpulse webhooks across a user's repositories.
package hooks

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/gitpulse/gitpulse/internal/github"
)

// Options controls a registration sweep.
type Options struct {
	// URL is the webhook delivery endpoint to register.
	URL string
	// Secret, when set, is stored in each created hook so deliveries can be
	// authenticated by the receiver.
	Secret string
	// Events to subscribe each hook to.
	Events []string
	// TrackerRepo is the repository holding the rendered badge; it is skipped
	// so badge commits never feed back into the activity they measure.
	TrackerRepo string
}

// Summary reports the outcome of a sweep, by repository name.
type Summary struct {
	Hooked  []string
	Skipped []string
	Failed  []string
}

// Registrar sets up webhooks on all repositories owned by a user.
type Registrar struct {
	client *github.Client
}

// NewRegistrar creates a Registrar.
func NewRegistrar(client *github.Client) *Registrar {
	return &Registrar{client: client}
}

// Setup registers the webhook on every repository owned by the authenticated
// user that does not already have it. Registration is idempotent: a repo
// whose existing hook config points at the target URL is skipped. A failure
// on one repository is recorded and the sweep continues, since a single
// permission problem should not abort the rest.
func (r *Registrar) Setup(ctx context.Context, opts Options) (*Summary, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if opts.Secret == "" {
		log.Println("warning: no webhook secret configured, deliveries will not be signed")
	}

	user, err := r.client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	repos, err := r.client.ListOwnedRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	summary := &Summary{}
	for _, repo := range repos {
		if strings.EqualFold(repo.Name, opts.TrackerRepo) {
			continue
		}

		hooked, err := r.alreadyHooked(ctx, user.Login, repo.Name, opts.URL)
		if err != nil {
			log.Printf("warning: checking hooks on %s: %v", repo.FullName, err)
			summary.Failed = append(summary.Failed, repo.Name)
			continue
		}
		if hooked {
			summary.Skipped = append(summary.Skipped, repo.Name)
			continue
		}

		req := github.HookRequest{
			Name:   "web",
			Active: true,
			Events: opts.Events,
			Config: github.HookConfig{
				URL:         opts.URL,
				ContentType: "json",
				Secret:      opts.Secret,
			},
		}
		if err := r.client.CreateHook(ctx, user.Login, repo.Name, req); err != nil {
			log.Printf("warning: creating hook on %s: %v", repo.FullName, err)
			summary.Failed = append(summary.Failed, repo.Name)
			continue
		}
		summary.Hooked = append(summary.Hooked, repo.Name)
	}

	return summary, nil
}

// Audit reports which owned repositories already deliver to the given URL
// without changing anything.
func (r *Registrar) Audit(ctx context.Context, url, trackerRepo string) (*Summary, error) {
	user, err := r.client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	repos, err := r.client.ListOwnedRepos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	summary := &Summary{}
	for _, repo := range repos {
		if strings.EqualFold(repo.Name, trackerRepo) {
			continue
		}

		hooked, err := r.alreadyHooked(ctx, user.Login, repo.Name, url)
		if err != nil {
			summary.Failed = append(summary.Failed, repo.Name)
			continue
		}
		if hooked {
			summary.Hooked = append(summary.Hooked, repo.Name)
		} else {
			summary.Skipped = append(summary.Skipped, repo.Name)
		}
	}

	return summary, nil
}

func (r *Registrar) alreadyHooked(ctx context.Context, owner, repo, url string) (bool, error) {
	existing, err := r.client.ListHooks(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	for _, h := range existing {
		if h.Config.URL == url {
			return true, nil
		}
	}
	return false, nil
}
