// Package source contains one adapter per upstream job-board API. Each
// adapter normalizes its provider's response into domain.JobRecord; any
// non-success status, network failure, malformed payload or timeout comes
// back as an error for the aggregation engine to absorb. Adapters never
// retry — that policy belongs to the caller.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobpulse/internal/domain"
)

// ErrNotConfigured is returned by adapters whose API key is absent. The
// engine treats it like any other fetch failure and substitutes fallback
// records for that source.
var ErrNotConfigured = errors.New("source not configured")

type Adapter interface {
	Name() domain.Source
	// Configured reports whether the adapter has what it needs to reach its
	// upstream. A missing key is not an error.
	Configured() bool
	Fetch(ctx context.Context, req domain.SearchRequest) ([]domain.JobRecord, error)
}

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 5 << 20

	defaultSalary   = "Competitive"
	defaultLocation = "Remote"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs one GET and decodes the body into out. One attempt only.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "JobPulse/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := readAllLimit(resp.Body, maxResponseSize)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func readAllLimit(r io.Reader, max int64) ([]byte, error) {
	lr := &io.LimitedReader{R: r, N: max}
	b, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if lr.N <= 0 {
		return nil, fmt.Errorf("response too large")
	}
	return b, nil
}

func pickNonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func parseTimeOr(s string, layouts []string, def time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return def
}

func splitEmploymentTypes(s string) []string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return []string{"full-time"}
	}
	s = strings.ReplaceAll(s, "_", "-")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{"full-time"}
	}
	return out
}
