// Package webhook handles incoming GitHub webhook events.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// VerifySignature validates the X-Hub-Signature-256 header against the payload.
func VerifySignature(payload []byte, signature string, secret []byte) error {
	if !strings.HasPrefix(signature, "sha256=") {
		return fmt.Errorf("invalid signature format")
	}
	sig, err := hex.DecodeString(signature[7:])
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if !hmac.Equal(sig, expected) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// PingEvent is GitHub's test delivery sent right after a hook is created.
type PingEvent struct {
	Zen        string           `json:"zen"`
	HookID     int64            `json:"hook_id"`
	Repository GitHubRepository `json:"repository"`
}

// PushEvent represents a push webhook event.
type PushEvent struct {
	Ref        string           `json:"ref"`
	Commits    []PushCommit     `json:"commits"`
	Repository GitHubRepository `json:"repository"`
	Sender     GitHubUser       `json:"sender"`
}

// PushCommit is a single commit within a push delivery.
type PushCommit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PullRequestEvent represents a pull request webhook event.
type PullRequestEvent struct {
	Action      string             `json:"action"`
	Number      int                `json:"number"`
	PullRequest PullRequestPayload `json:"pull_request"`
	Repository  GitHubRepository   `json:"repository"`
	Sender      GitHubUser         `json:"sender"`
}

// PullRequestPayload contains pull request details.
type PullRequestPayload struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	User      GitHubUser `json:"user"`
}

// IssuesEvent represents an issues webhook event.
type IssuesEvent struct {
	Action     string           `json:"action"`
	Issue      IssuePayload     `json:"issue"`
	Repository GitHubRepository `json:"repository"`
	Sender     GitHubUser       `json:"sender"`
}

// IssueCommentEvent represents an issue_comment webhook event.
type IssueCommentEvent struct {
	Action     string           `json:"action"`
	Issue      IssuePayload     `json:"issue"`
	Comment    CommentPayload   `json:"comment"`
	Repository GitHubRepository `json:"repository"`
	Sender     GitHubUser       `json:"sender"`
}

// IssuePayload contains issue details.
type IssuePayload struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	User      GitHubUser `json:"user"`
}

// CommentPayload contains issue comment details.
type CommentPayload struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	User      GitHubUser `json:"user"`
}

// GitHubUser represents a GitHub user or organization.
type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// GitHubRepository represents a GitHub repository.
type GitHubRepository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

// ParseEvent parses a webhook payload based on the event type.
func ParseEvent(eventType string, payload []byte) (interface{}, error) {
	switch eventType {
	case "ping":
		var e PingEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse ping event: %w", err)
		}
		return &e, nil
	case "push":
		var e PushEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse push event: %w", err)
		}
		return &e, nil
	case "pull_request":
		var e PullRequestEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse pull_request event: %w", err)
		}
		return &e, nil
	case "issues":
		var e IssuesEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse issues event: %w", err)
		}
		return &e, nil
	case "issue_comment":
		var e IssueCommentEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse issue_comment event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
}
