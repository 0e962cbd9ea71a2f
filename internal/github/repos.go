package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Repo is a repository owned by the authenticated user.
type Repo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	Archived bool   `json:"archived"`
}

// Hook is an existing webhook on a repository.
type Hook struct {
	ID     int64      `json:"id"`
	Active bool       `json:"active"`
	Events []string   `json:"events"`
	Config HookConfig `json:"config"`
}

// HookConfig is the delivery configuration of a webhook.
type HookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Secret      string `json:"secret,omitempty"`
}

// HookRequest describes a webhook to create.
type HookRequest struct {
	Name   string     `json:"name"`
	Active bool       `json:"active"`
	Events []string   `json:"events"`
	Config HookConfig `json:"config"`
}

// ListOwnedRepos returns all repositories owned by the authenticated user,
// following Link-header pagination.
func (c *Client) ListOwnedRepos(ctx context.Context) ([]Repo, error) {
	var all []Repo
	next := c.baseURL + "/user/repos?type=owner&per_page=100"

	for next != "" {
		resp, err := c.do(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("list owned repos: %w", err)
		}

		var page []Repo
		err = decodeBody(resp, &page)
		if err != nil {
			return nil, fmt.Errorf("list owned repos: %w", err)
		}

		all = append(all, page...)
		next = nextLink(resp.Header.Get("Link"))
	}

	return all, nil
}

// ListHooks returns the webhooks configured on a repository.
func (c *Client) ListHooks(ctx context.Context, owner, repo string) ([]Hook, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/hooks", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var hooks []Hook
	if err := c.getJSON(ctx, endpoint, &hooks); err != nil {
		return nil, fmt.Errorf("list hooks for %s/%s: %w", owner, repo, err)
	}
	return hooks, nil
}

// CreateHook creates a webhook on a repository.
func (c *Client) CreateHook(ctx context.Context, owner, repo string, req HookRequest) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/hooks", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	if err := c.postJSON(ctx, endpoint, req, nil); err != nil {
		return fmt.Errorf("create hook on %s/%s: %w", owner, repo, err)
	}
	return nil
}

// nextLink extracts the rel="next" URL from a Link header, or "" when the
// last page has been reached.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) != `rel="next"` {
			continue
		}
		return strings.Trim(strings.TrimSpace(section[0]), "<>")
	}
	return ""
}
