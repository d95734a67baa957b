// Package store persists fire-and-forget activity telemetry and derives
// analytics snapshots from it. The sink is optional: with no database
// configured, writes are dropped and reads report no data so the caller
// falls back to synthetic snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"strings"
	"time"

	"jobpulse/internal/domain"
	"jobpulse/internal/fallback"

	"github.com/google/uuid"
)

var ErrNoData = errors.New("no telemetry recorded")

type Telemetry struct {
	db     DB
	logger *log.Logger
}

func NewTelemetry(db DB, logger *log.Logger) *Telemetry {
	return &Telemetry{db: db, logger: logger}
}

func (t *Telemetry) available() bool {
	return t != nil && t.db != nil
}

// RecordActivity inserts one event. Errors are logged, never propagated:
// telemetry loss must not affect the request that produced it.
func (t *Telemetry) RecordActivity(ctx context.Context, ev domain.ActivityEvent) {
	if !t.available() {
		return
	}
	if strings.TrimSpace(ev.Action) == "" {
		return
	}
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	var props []byte
	if len(ev.Properties) > 0 {
		props, _ = json.Marshal(ev.Properties)
	}

	_, err := t.db.Exec(ctx,
		`INSERT INTO activity_events (id, user_id, action, target, properties, occurred_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.New(),
		strings.TrimSpace(ev.UserID),
		strings.TrimSpace(ev.Action),
		strings.TrimSpace(ev.Target),
		props,
		occurred,
	)
	if err != nil && t.logger != nil {
		t.logger.Printf("telemetry: insert failed | action=%s err=%v", ev.Action, err)
	}
}

// Snapshot derives the countable parts of an analytics snapshot from the
// recorded events. Skill and salary trends are not derivable from telemetry,
// so those sections are synthesized around the real counters; a user with no
// events at all gets ErrNoData.
func (t *Telemetry) Snapshot(ctx context.Context, userID string) (domain.AnalyticsSnapshot, error) {
	if !t.available() {
		return domain.AnalyticsSnapshot{}, ErrNoData
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.AnalyticsSnapshot{}, fmt.Errorf("empty user id")
	}

	var views, apps, interviews, responses int
	row := t.db.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE action = 'profile_view'),
			COUNT(*) FILTER (WHERE action = 'application_sent'),
			COUNT(*) FILTER (WHERE action = 'interview_scheduled'),
			COUNT(*) FILTER (WHERE action = 'response_received')
		 FROM activity_events WHERE user_id = $1`,
		userID,
	)
	if err := row.Scan(&views, &apps, &interviews, &responses); err != nil {
		return domain.AnalyticsSnapshot{}, fmt.Errorf("telemetry counts: %w", err)
	}
	if views+apps+interviews+responses == 0 {
		return domain.AnalyticsSnapshot{}, ErrNoData
	}

	rate := 0.0
	if apps > 0 {
		rate = float64(responses) / float64(apps)
		if rate > 1 {
			rate = 1
		}
	}

	// Stable per-user seed keeps the synthesized sections consistent
	// between refreshes of the same dashboard.
	snap := fallback.New(userSeed(userID)).Analytics(userID)
	snap.ProfileViews = views
	snap.ApplicationsSent = apps
	snap.InterviewsScheduled = interviews
	snap.ResponseRate = rate
	return snap, nil
}

func userSeed(userID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(userID))
	return int64(h.Sum64())
}
