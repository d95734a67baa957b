package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobpulse/internal/domain"

	"github.com/gorilla/websocket"
)

func fixedAPISeed() APIOption {
	return WithAPISeedFn(func() int64 { return 4242 })
}

func TestFetchJobsWithoutConnectionSynthesizes(t *testing.T) {
	api := NewRealTimeAPI(nil, "http://unused", nil, fixedAPISeed())

	results := api.FetchJobs(context.Background(), domain.SearchRequest{Query: "golang", Limit: 6})

	if results.Count != 6 || len(results.Jobs) != 6 {
		t.Fatalf("count %d / %d jobs, want the requested 6", results.Count, len(results.Jobs))
	}
	for i, j := range results.Jobs {
		if j.Title == "" || j.Company == "" || j.Salary == "" {
			t.Errorf("job %d incomplete: %+v", i, j)
		}
	}
	if len(results.Sources) == 0 {
		t.Error("sources must not be empty")
	}
}

func TestFetchJobsRoundTrip(t *testing.T) {
	srv := newRelayServer(t, func(conn *websocket.Conn) {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env domain.Envelope
			if json.Unmarshal(raw, &env) != nil || env.Event != domain.EventJobsSearch {
				continue
			}
			results := domain.SearchResults{
				Count:   1,
				Sources: []string{"linkedin"},
				Jobs:    []domain.JobRecord{{Title: "Relay Engineer", Company: "Alpha", Source: domain.SourceLinkedIn}},
			}
			out, _ := domain.NewEnvelope(domain.EventJobsResults, env.RequestID, results)
			b, _ := json.Marshal(out)
			_ = conn.WriteMessage(websocket.TextMessage, b)
		}
	})

	s := NewSocket(srv.wsURL(), domain.AuthPayload{UserID: "u1"}, nil)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	api := NewRealTimeAPI(s, "http://unused", nil, fixedAPISeed(), WithSearchTimeout(3*time.Second))
	results := api.FetchJobs(context.Background(), domain.SearchRequest{Query: "relay", Limit: 5})

	if results.Count != 1 || len(results.Jobs) != 1 || results.Jobs[0].Title != "Relay Engineer" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestFetchJobsErrorEventSynthesizes(t *testing.T) {
	srv := newRelayServer(t, func(conn *websocket.Conn) {
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env domain.Envelope
			if json.Unmarshal(raw, &env) != nil {
				continue
			}
			out, _ := domain.NewEnvelope(domain.EventJobsError, env.RequestID, domain.ErrorPayload{Message: "aggregation failed"})
			b, _ := json.Marshal(out)
			_ = conn.WriteMessage(websocket.TextMessage, b)
		}
	})

	s := NewSocket(srv.wsURL(), domain.AuthPayload{}, nil)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	api := NewRealTimeAPI(s, "http://unused", nil, fixedAPISeed(), WithSearchTimeout(3*time.Second))
	results := api.FetchJobs(context.Background(), domain.SearchRequest{Query: "anything", Limit: 4})

	if len(results.Jobs) != 4 {
		t.Fatalf("error reply must yield %d synthesized jobs, got %d", 4, len(results.Jobs))
	}
}

func TestFetchJobsTimeoutSynthesizes(t *testing.T) {
	srv := newRelayServer(t, func(conn *websocket.Conn) {
		// Swallow requests without ever answering.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := NewSocket(srv.wsURL(), domain.AuthPayload{}, nil)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	api := NewRealTimeAPI(s, "http://unused", nil, fixedAPISeed(), WithSearchTimeout(50*time.Millisecond))
	results := api.FetchJobs(context.Background(), domain.SearchRequest{Limit: 3})

	if len(results.Jobs) != 3 {
		t.Fatalf("timeout must yield synthesized jobs, got %d", len(results.Jobs))
	}
}

func companyEnvelope(rec domain.CompanyRecord) []byte {
	b, _ := json.Marshal(map[string]any{"status": 200, "message": "ok", "data": rec})
	return b
}

func TestFetchCompanyDataHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/companies/Globex" {
			t.Errorf("path %q", r.URL.Path)
		}
		_, _ = w.Write(companyEnvelope(domain.CompanyRecord{Name: "Globex", Industry: "Technology", Rating: 4.2}))
	}))
	defer srv.Close()

	api := NewRealTimeAPI(nil, srv.URL, nil, fixedAPISeed())
	rec := api.FetchCompanyData(context.Background(), "Globex")

	if rec.Name != "Globex" || rec.Rating != 4.2 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestFetchCompanyDataFailureSynthesizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	api := NewRealTimeAPI(nil, srv.URL, nil, fixedAPISeed())
	rec := api.FetchCompanyData(context.Background(), "Initech")

	if rec.Name != "Initech" {
		t.Fatalf("synthesized record must carry the requested name, got %q", rec.Name)
	}
	if rec.Rating < 3.5 || rec.Rating > 5.0 {
		t.Errorf("rating %v outside the synthetic range", rec.Rating)
	}
}

func TestFetchAnalyticsUnreachableSynthesizes(t *testing.T) {
	api := NewRealTimeAPI(nil, "http://127.0.0.1:1", nil, fixedAPISeed(),
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))

	snap := api.FetchAnalytics(context.Background(), "user-3")

	if snap.UserID != "user-3" {
		t.Fatalf("snapshot user %q", snap.UserID)
	}
	if snap.ResponseRate < 0 || snap.ResponseRate > 1 {
		t.Errorf("response rate %v outside [0, 1]", snap.ResponseRate)
	}
}

func TestFetchAnalyticsHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analytics/user-7" {
			t.Errorf("path %q", r.URL.Path)
		}
		b, _ := json.Marshal(map[string]any{"status": 200, "message": "ok",
			"data": domain.AnalyticsSnapshot{UserID: "user-7", ProfileViews: 42}})
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	api := NewRealTimeAPI(nil, srv.URL, nil, fixedAPISeed())
	snap := api.FetchAnalytics(context.Background(), "user-7")

	if snap.ProfileViews != 42 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestTrackActivityNeverFails(t *testing.T) {
	api := NewRealTimeAPI(nil, "http://unused", nil, fixedAPISeed())
	// No socket, no server: still must not panic or block.
	api.TrackActivity(domain.ActivityEvent{UserID: "u1", Action: "profile_view"})

	s := NewSocket("ws://unused", domain.AuthPayload{}, nil)
	api = NewRealTimeAPI(s, "http://unused", nil, fixedAPISeed())
	api.TrackActivity(domain.ActivityEvent{UserID: "u1", Action: "application_sent"})
}
