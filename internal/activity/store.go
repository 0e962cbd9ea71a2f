// Package activity persists per-day contribution activity observed through
// webhook deliveries, backed by Postgres.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gitpulse/gitpulse/pkg/streak"
)

// Event is one day's worth of contributions carried by a single webhook
// delivery. A push spanning commits on several days produces one Event per
// day, all sharing the delivery ID.
type Event struct {
	DeliveryID string
	Login      string
	Repo       string
	Kind       string
	Day        time.Time
	Count      int
}

// Store provides activity persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a new activity Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts an event. GitHub retries webhook deliveries, so the insert
// is keyed on (delivery_id, occurred_on): replaying a delivery is a no-op.
func (s *Store) Record(ctx context.Context, e Event) error {
	if e.Count < 0 {
		return fmt.Errorf("record event: negative count %d", e.Count)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_events (delivery_id, login, repo, event_type, occurred_on, contributions)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (delivery_id, occurred_on) DO NOTHING`,
		e.DeliveryID, e.Login, e.Repo, e.Kind, streak.DateOf(e.Day), e.Count,
	)
	if err != nil {
		return fmt.Errorf("record event for %s: %w", e.Login, err)
	}
	return nil
}

// Series builds the contribution series for a login over [since, until],
// along with the total contribution count across the window.
func (s *Store) Series(ctx context.Context, login string, since, until time.Time) (streak.Series, int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT occurred_on, SUM(contributions)
		 FROM activity_events
		 WHERE login = $1 AND occurred_on BETWEEN $2 AND $3
		 GROUP BY occurred_on
		 ORDER BY occurred_on`,
		login, streak.DateOf(since), streak.DateOf(until),
	)
	if err != nil {
		return streak.Series{}, 0, fmt.Errorf("query activity for %s: %w", login, err)
	}
	defer rows.Close()

	var days []streak.Day
	total := 0
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return streak.Series{}, 0, fmt.Errorf("scan activity row: %w", err)
		}
		days = append(days, streak.Day{Date: day, Count: count})
		total += count
	}
	if err := rows.Err(); err != nil {
		return streak.Series{}, 0, fmt.Errorf("read activity rows: %w", err)
	}

	series, err := streak.NewSeries(days)
	if err != nil {
		return streak.Series{}, 0, fmt.Errorf("build series for %s: %w", login, err)
	}
	return series, total, nil
}

// Logins returns all logins with recorded activity, for badge pre-rendering.
func (s *Store) Logins(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT login FROM activity_events ORDER BY login`,
	)
	if err != nil {
		return nil, fmt.Errorf("list logins: %w", err)
	}
	defer rows.Close()

	var logins []string
	for rows.Next() {
		var login string
		if err := rows.Scan(&login); err != nil {
			return nil, fmt.Errorf("scan login: %w", err)
		}
		logins = append(logins, login)
	}
	return logins, rows.Err()
}
