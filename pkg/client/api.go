package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"jobpulse/internal/domain"
	"jobpulse/internal/fallback"

	"github.com/google/uuid"
)

const (
	defaultSearchTimeout = 15 * time.Second
	defaultHTTPTimeout   = 10 * time.Second
	maxAPIBody           = 5 << 20
)

// RealTimeAPI is the single façade consumers talk to. Job search rides the
// relay socket; company and analytics lookups ride HTTP. Every fetch degrades
// to synthesized data on failure, so callers always receive a usable,
// non-nil result.
type RealTimeAPI struct {
	socket  *Socket
	baseURL string
	http    *http.Client
	logger  *log.Logger
	seedFn  func() int64
	timeout time.Duration
}

type APIOption func(*RealTimeAPI)

// WithHTTPClient replaces the underlying HTTP client; tests use it.
func WithHTTPClient(c *http.Client) APIOption {
	return func(a *RealTimeAPI) {
		if c != nil {
			a.http = c
		}
	}
}

// WithSearchTimeout bounds how long FetchJobs waits for the relay response.
func WithSearchTimeout(d time.Duration) APIOption {
	return func(a *RealTimeAPI) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAPISeedFn pins the fallback seed; tests use it.
func WithAPISeedFn(fn func() int64) APIOption {
	return func(a *RealTimeAPI) {
		if fn != nil {
			a.seedFn = fn
		}
	}
}

func NewRealTimeAPI(socket *Socket, baseURL string, logger *log.Logger, opts ...APIOption) *RealTimeAPI {
	a := &RealTimeAPI{
		socket:  socket,
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
		logger:  logger,
		seedFn:  func() int64 { return time.Now().UnixNano() },
		timeout: defaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Socket exposes the underlying relay connection for listener registration.
func (a *RealTimeAPI) Socket() *Socket {
	return a.socket
}

// FetchJobs issues a search over the relay and waits for the correlated
// response. Any failure — no connection, timeout, a jobs:error reply, a
// dropped connection mid-flight — yields synthesized results instead of an
// empty hand.
func (a *RealTimeAPI) FetchJobs(ctx context.Context, req domain.SearchRequest) domain.SearchResults {
	if a.socket == nil || a.socket.State() != StateConnected {
		a.warn("jobs search skipped, relay not connected", nil)
		return a.fallbackResults(req)
	}

	requestID := uuid.New().String()
	ch := a.socket.registerPending(domain.EventJobsResults, domain.EventJobsError, requestID)
	defer a.socket.dropPending(requestID)

	a.socket.emitWithID(domain.EventJobsSearch, requestID, req)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	select {
	case env, ok := <-ch:
		if !ok {
			a.warn("jobs search interrupted by disconnect", nil)
			return a.fallbackResults(req)
		}
		if env.Event == domain.EventJobsError {
			var p domain.ErrorPayload
			_ = json.Unmarshal(env.Data, &p)
			a.warn("jobs search failed upstream", fmt.Errorf("%s", p.Message))
			return a.fallbackResults(req)
		}
		var results domain.SearchResults
		if err := json.Unmarshal(env.Data, &results); err != nil {
			a.warn("jobs results malformed", err)
			return a.fallbackResults(req)
		}
		if results.Jobs == nil {
			results.Jobs = []domain.JobRecord{}
		}
		if results.Sources == nil {
			results.Sources = []string{}
		}
		return results
	case <-ctx.Done():
		a.warn("jobs search timed out", ctx.Err())
		return a.fallbackResults(req)
	}
}

// FetchSourceJobs queries a single upstream source over HTTP.
func (a *RealTimeAPI) FetchSourceJobs(ctx context.Context, source domain.Source, req domain.SearchRequest) domain.SearchResults {
	body, err := json.Marshal(req)
	if err != nil {
		return a.fallbackResults(req)
	}

	var results domain.SearchResults
	if err := a.doJSON(ctx, http.MethodPost, "/jobs/"+url.PathEscape(string(source)), body, &results); err != nil {
		a.warn("source jobs fetch failed", err)
		return a.fallbackResults(req)
	}
	if results.Jobs == nil {
		results.Jobs = []domain.JobRecord{}
	}
	if results.Sources == nil {
		results.Sources = []string{}
	}
	return results
}

// FetchCompanyData looks the company up over HTTP, synthesizing a profile on
// any failure.
func (a *RealTimeAPI) FetchCompanyData(ctx context.Context, name string) domain.CompanyRecord {
	var rec domain.CompanyRecord
	if err := a.doJSON(ctx, http.MethodGet, "/companies/"+url.PathEscape(name), nil, &rec); err != nil {
		a.warn("company fetch failed", err)
		return fallback.New(a.seedFn()).Company(name)
	}
	if rec.Name == "" {
		return fallback.New(a.seedFn()).Company(name)
	}
	return rec
}

// FetchAnalytics retrieves the user's snapshot over HTTP, synthesizing one on
// any failure.
func (a *RealTimeAPI) FetchAnalytics(ctx context.Context, userID string) domain.AnalyticsSnapshot {
	var snap domain.AnalyticsSnapshot
	if err := a.doJSON(ctx, http.MethodGet, "/analytics/"+url.PathEscape(userID), nil, &snap); err != nil {
		a.warn("analytics fetch failed", err)
		return fallback.New(a.seedFn()).Analytics(userID)
	}
	if snap.UserID == "" {
		snap.UserID = userID
	}
	return snap
}

// TrackActivity is fire-and-forget: the event rides the relay when connected
// and is dropped with a log line otherwise. It never returns an error.
func (a *RealTimeAPI) TrackActivity(ev domain.ActivityEvent) {
	if a.socket == nil {
		a.warn("activity drop, no relay socket", nil)
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	a.socket.Emit(domain.EventTrackActivity, ev)
}

// apiEnvelope mirrors the server's HTTP response wrapper.
type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *RealTimeAPI) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBody))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Data == nil {
		return fmt.Errorf("empty response payload from %s", path)
	}
	return json.Unmarshal(env.Data, out)
}

func (a *RealTimeAPI) fallbackResults(req domain.SearchRequest) domain.SearchResults {
	count := req.Limit
	if count <= 0 {
		count = 10
	}
	jobs := fallback.New(a.seedFn()).Jobs(domain.SourceFallback, req, count)
	return domain.SearchResults{
		Count:   len(jobs),
		Sources: []string{string(domain.SourceFallback)},
		Jobs:    jobs,
	}
}

func (a *RealTimeAPI) warn(msg string, err error) {
	if a.logger == nil {
		return
	}
	if err != nil {
		a.logger.Printf("api: %s | err=%v", msg, err)
		return
	}
	a.logger.Printf("api: %s", msg)
}
