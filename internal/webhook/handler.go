package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gitpulse/gitpulse/internal/activity"
	"github.com/gitpulse/gitpulse/pkg/streak"
)

// Recorder persists the activity derived from webhook events.
type Recorder interface {
	Record(ctx context.Context, e activity.Event) error
}

// Handler processes incoming GitHub webhook events.
type Handler struct {
	secret   []byte
	recorder Recorder
	// now is the clock used to date events without their own timestamp;
	// overridable in tests.
	now func() time.Time
}

// NewHandler creates a new webhook Handler. An empty secret disables
// signature checking, matching hooks that were registered without one.
func NewHandler(secret []byte, recorder Recorder) *Handler {
	return &Handler{
		secret:   secret,
		recorder: recorder,
		now:      time.Now,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if len(h.secret) > 0 {
		signature := r.Header.Get("X-Hub-Signature-256")
		if err := VerifySignature(body, signature, h.secret); err != nil {
			log.Printf("webhook signature verification failed: %v", err)
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	deliveryID := r.Header.Get("X-GitHub-Delivery")
	if _, err := uuid.Parse(deliveryID); err != nil {
		http.Error(w, "missing or malformed X-GitHub-Delivery header", http.StatusBadRequest)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		http.Error(w, "missing X-GitHub-Event header", http.StatusBadRequest)
		return
	}

	event, err := ParseEvent(eventType, body)
	if err != nil {
		log.Printf("webhook parse error for %s: %v", eventType, err)
		http.Error(w, "unsupported event", http.StatusBadRequest)
		return
	}

	if ping, ok := event.(*PingEvent); ok {
		log.Printf("ping from hook %d on %s: %s", ping.HookID, ping.Repository.FullName, ping.Zen)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "pong"})
		return
	}

	events := eventsFrom(event, deliveryID, h.now())
	for _, e := range events {
		if err := h.recorder.Record(r.Context(), e); err != nil {
			log.Printf("record %s event: %v", e.Kind, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if len(events) > 0 {
		log.Printf("recorded %d activity event(s) from %s delivery %s", len(events), eventType, deliveryID)
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// eventsFrom maps a parsed webhook event onto per-day activity events.
// Actions that do not represent fresh contribution activity (closing an
// issue, labeling a PR) produce nothing.
func eventsFrom(event interface{}, deliveryID string, receivedAt time.Time) []activity.Event {
	switch e := event.(type) {
	case *PushEvent:
		return pushEvents(e, deliveryID, receivedAt)

	case *PullRequestEvent:
		if e.Action != "opened" {
			return nil
		}
		return []activity.Event{{
			DeliveryID: deliveryID,
			Login:      e.Sender.Login,
			Repo:       e.Repository.FullName,
			Kind:       "pull_request",
			Day:        timestampOr(e.PullRequest.CreatedAt, receivedAt),
			Count:      1,
		}}

	case *IssuesEvent:
		if e.Action != "opened" {
			return nil
		}
		return []activity.Event{{
			DeliveryID: deliveryID,
			Login:      e.Sender.Login,
			Repo:       e.Repository.FullName,
			Kind:       "issues",
			Day:        timestampOr(e.Issue.CreatedAt, receivedAt),
			Count:      1,
		}}

	case *IssueCommentEvent:
		if e.Action != "created" {
			return nil
		}
		return []activity.Event{{
			DeliveryID: deliveryID,
			Login:      e.Sender.Login,
			Repo:       e.Repository.FullName,
			Kind:       "issue_comment",
			Day:        timestampOr(e.Comment.CreatedAt, receivedAt),
			Count:      1,
		}}
	}
	return nil
}

// pushEvents groups a push's commits by commit date, one activity event per
// day. Commits without a timestamp are attributed to the delivery time.
func pushEvents(e *PushEvent, deliveryID string, receivedAt time.Time) []activity.Event {
	if len(e.Commits) == 0 {
		return nil
	}

	perDay := make(map[time.Time]int)
	for _, c := range e.Commits {
		day := streak.DateOf(timestampOr(c.Timestamp, receivedAt))
		perDay[day]++
	}

	events := make([]activity.Event, 0, len(perDay))
	for day, count := range perDay {
		events = append(events, activity.Event{
			DeliveryID: deliveryID,
			Login:      e.Sender.Login,
			Repo:       e.Repository.FullName,
			Kind:       "push",
			Day:        day,
			Count:      count,
		})
	}
	return events
}

func timestampOr(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}
