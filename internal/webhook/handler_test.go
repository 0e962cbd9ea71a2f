package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gitpulse/gitpulse/internal/activity"
)

func computeHMAC(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("webhook-secret-123")
	payload := []byte(`{"action":"opened"}`)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    []byte
		wantErr   bool
	}{
		{
			name:      "valid signature",
			payload:   payload,
			signature: computeHMAC(payload, secret),
			secret:    secret,
			wantErr:   false,
		},
		{
			name:      "wrong secret",
			payload:   payload,
			signature: computeHMAC(payload, []byte("wrong-secret")),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "tampered payload",
			payload:   []byte(`{"action":"closed"}`),
			signature: computeHMAC(payload, secret),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "missing sha256= prefix",
			payload:   payload,
			signature: "not-a-valid-sig",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "invalid hex after prefix",
			payload:   payload,
			signature: "sha256=zzzz",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "empty signature",
			payload:   payload,
			signature: "",
			secret:    secret,
			wantErr:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(tc.payload, tc.signature, tc.secret)
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseEvent_Push(t *testing.T) {
	payload := PushEvent{
		Ref: "refs/heads/main",
		Commits: []PushCommit{
			{ID: "abc123", Message: "fix parser", Timestamp: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)},
			{ID: "def456", Message: "add tests", Timestamp: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		},
		Repository: GitHubRepository{ID: 42, Name: "alpha", FullName: "octocat/alpha"},
		Sender:     GitHubUser{ID: 1, Login: "octocat"},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	event, err := ParseEvent("push", data)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}

	push, ok := event.(*PushEvent)
	if !ok {
		t.Fatalf("expected *PushEvent, got %T", event)
	}
	if push.Repository.FullName != "octocat/alpha" {
		t.Errorf("repo = %q, want octocat/alpha", push.Repository.FullName)
	}
	if len(push.Commits) != 2 {
		t.Errorf("commits = %d, want 2", len(push.Commits))
	}
	if push.Sender.Login != "octocat" {
		t.Errorf("sender = %q, want octocat", push.Sender.Login)
	}
}

func TestParseEvent_Issues(t *testing.T) {
	payload := IssuesEvent{
		Action: "opened",
		Issue: IssuePayload{
			Number:    7,
			Title:     "streak off by one",
			CreatedAt: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		},
		Repository: GitHubRepository{FullName: "octocat/alpha"},
		Sender:     GitHubUser{Login: "octocat"},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	event, err := ParseEvent("issues", data)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}

	issues, ok := event.(*IssuesEvent)
	if !ok {
		t.Fatalf("expected *IssuesEvent, got %T", event)
	}
	if issues.Issue.Number != 7 {
		t.Errorf("issue number = %d, want 7", issues.Issue.Number)
	}
}

func TestParseEvent_UnsupportedType(t *testing.T) {
	_, err := ParseEvent("unknown_event", []byte(`{}`))
	if err == nil {
		t.Error("expected error for unsupported event type, got nil")
	}
}

func TestParseEvent_InvalidJSON(t *testing.T) {
	types := []string{"ping", "push", "pull_request", "issues", "issue_comment"}
	for _, eventType := range types {
		t.Run(eventType, func(t *testing.T) {
			_, err := ParseEvent(eventType, []byte(`{invalid json`))
			if err == nil {
				t.Errorf("expected error parsing invalid JSON for %s, got nil", eventType)
			}
		})
	}
}

type fakeRecorder struct {
	events []activity.Event
	err    error
}

func (f *fakeRecorder) Record(ctx context.Context, e activity.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

const testDelivery = "f7dd8f20-59ed-4d90-91fc-a0a9a4e0c9e1"

func deliver(t *testing.T, h *Handler, eventType string, payload interface{}, secret []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/github", bytes.NewReader(body))
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", testDelivery)
	if secret != nil {
		req.Header.Set("X-Hub-Signature-256", computeHMAC(body, secret))
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlerRecordsPushPerDay(t *testing.T) {
	rec := &fakeRecorder{}
	secret := []byte("s3cret")
	h := NewHandler(secret, rec)

	day1 := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 0, 10, 0, 0, time.UTC)
	resp := deliver(t, h, "push", PushEvent{
		Ref: "refs/heads/main",
		Commits: []PushCommit{
			{ID: "a", Timestamp: day1},
			{ID: "b", Timestamp: day2},
			{ID: "c", Timestamp: day2.Add(time.Hour)},
		},
		Repository: GitHubRepository{FullName: "octocat/alpha"},
		Sender:     GitHubUser{Login: "octocat"},
	}, secret)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d (%s)", resp.Code, http.StatusAccepted, resp.Body.String())
	}
	if len(rec.events) != 2 {
		t.Fatalf("recorded %d events, want 2 (one per day)", len(rec.events))
	}

	byDay := make(map[string]activity.Event)
	for _, e := range rec.events {
		byDay[e.Day.Format("2006-01-02")] = e
		if e.DeliveryID != testDelivery {
			t.Errorf("DeliveryID = %q, want %q", e.DeliveryID, testDelivery)
		}
		if e.Login != "octocat" || e.Kind != "push" {
			t.Errorf("event = %+v", e)
		}
	}
	if byDay["2026-03-14"].Count != 1 {
		t.Errorf("count on 2026-03-14 = %d, want 1", byDay["2026-03-14"].Count)
	}
	if byDay["2026-03-15"].Count != 2 {
		t.Errorf("count on 2026-03-15 = %d, want 2", byDay["2026-03-15"].Count)
	}
}

func TestHandlerRecordsOpenedActionsOnly(t *testing.T) {
	tests := []struct {
		name       string
		eventType  string
		payload    interface{}
		wantEvents int
	}{
		{
			name:      "pull request opened",
			eventType: "pull_request",
			payload: PullRequestEvent{
				Action:      "opened",
				Number:      3,
				PullRequest: PullRequestPayload{Number: 3, CreatedAt: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)},
				Repository:  GitHubRepository{FullName: "octocat/alpha"},
				Sender:      GitHubUser{Login: "octocat"},
			},
			wantEvents: 1,
		},
		{
			name:      "pull request closed is ignored",
			eventType: "pull_request",
			payload: PullRequestEvent{
				Action:     "closed",
				Repository: GitHubRepository{FullName: "octocat/alpha"},
				Sender:     GitHubUser{Login: "octocat"},
			},
			wantEvents: 0,
		},
		{
			name:      "issue opened",
			eventType: "issues",
			payload: IssuesEvent{
				Action:     "opened",
				Issue:      IssuePayload{Number: 1, CreatedAt: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)},
				Repository: GitHubRepository{FullName: "octocat/alpha"},
				Sender:     GitHubUser{Login: "octocat"},
			},
			wantEvents: 1,
		},
		{
			name:      "comment created",
			eventType: "issue_comment",
			payload: IssueCommentEvent{
				Action:     "created",
				Comment:    CommentPayload{ID: 5, CreatedAt: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)},
				Repository: GitHubRepository{FullName: "octocat/alpha"},
				Sender:     GitHubUser{Login: "octocat"},
			},
			wantEvents: 1,
		},
		{
			name:      "comment deleted is ignored",
			eventType: "issue_comment",
			payload: IssueCommentEvent{
				Action:     "deleted",
				Repository: GitHubRepository{FullName: "octocat/alpha"},
				Sender:     GitHubUser{Login: "octocat"},
			},
			wantEvents: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			secret := []byte("s3cret")
			h := NewHandler(secret, rec)

			resp := deliver(t, h, tc.eventType, tc.payload, secret)
			if resp.Code != http.StatusAccepted {
				t.Fatalf("status = %d, want %d", resp.Code, http.StatusAccepted)
			}
			if len(rec.events) != tc.wantEvents {
				t.Errorf("recorded %d events, want %d", len(rec.events), tc.wantEvents)
			}
			if tc.wantEvents == 1 && rec.events[0].Count != 1 {
				t.Errorf("count = %d, want 1", rec.events[0].Count)
			}
		})
	}
}

func TestHandlerRejectsBadSignature(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewHandler([]byte("real-secret"), rec)

	resp := deliver(t, h, "push", PushEvent{}, []byte("wrong-secret"))
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
	if len(rec.events) != 0 {
		t.Errorf("recorded %d events after rejected delivery", len(rec.events))
	}
}

func TestHandlerWithoutSecretSkipsVerification(t *testing.T) {
	rec := &fakeRecorder{}
	h := NewHandler(nil, rec)

	resp := deliver(t, h, "ping", PingEvent{Zen: "Keep it simple.", HookID: 1}, nil)
	if resp.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.Code, http.StatusOK)
	}
}

func TestHandlerRequiresDeliveryID(t *testing.T) {
	h := NewHandler(nil, &fakeRecorder{})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/github", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-GitHub-Event", "push")
	// no X-GitHub-Delivery

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h := NewHandler(nil, &fakeRecorder{})

	req := httptest.NewRequest(http.MethodGet, "/v1/webhooks/github", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}
