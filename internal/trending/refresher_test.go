package trending

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"jobpulse/internal/domain"
)

type fakeAggregator struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeAggregator) SearchJobs(_ context.Context, req domain.SearchRequest) []domain.JobRecord {
	f.mu.Lock()
	f.queries = append(f.queries, req.Query)
	f.mu.Unlock()
	return []domain.JobRecord{
		{Title: "A " + req.Query, Company: "Alpha", Source: domain.SourceLinkedIn},
		{Title: "B " + req.Query, Company: "Beta", Source: domain.SourceIndeed},
		{Title: "C " + req.Query, Company: "Gamma", Source: domain.SourceRemoteOK},
		{Title: "D " + req.Query, Company: "Delta", Source: domain.SourceGlassdoor},
	}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	frames [][]byte
}

func (f *fakeBroadcaster) Broadcast(message []byte) {
	f.mu.Lock()
	f.frames = append(f.frames, message)
	f.mu.Unlock()
}

func TestRefreshPushesCappedJobNewEvents(t *testing.T) {
	agg := &fakeAggregator{}
	hub := &fakeBroadcaster{}
	r := New(agg, hub, "@every 1h", []string{"golang", "remote"}, nil)

	r.refresh()

	if len(agg.queries) != 2 {
		t.Fatalf("queries %v, want one per keyword", agg.queries)
	}
	if len(hub.frames) != 2*pushPerKeyword {
		t.Fatalf("broadcast %d frames, want %d", len(hub.frames), 2*pushPerKeyword)
	}
	for _, raw := range hub.frames {
		var env domain.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatal(err)
		}
		if env.Event != domain.EventJobNew {
			t.Errorf("event %q, want %q", env.Event, domain.EventJobNew)
		}
	}
}

func TestStartWithoutSpecIsInert(t *testing.T) {
	r := New(&fakeAggregator{}, &fakeBroadcaster{}, "", []string{"golang"}, nil)
	if err := r.Start(); err != nil {
		t.Fatalf("inert refresher must not error: %v", err)
	}
	r.Stop()
}

func TestStartRejectsBadSpec(t *testing.T) {
	r := New(&fakeAggregator{}, &fakeBroadcaster{}, "every five minutes", []string{"golang"}, nil)
	if err := r.Start(); err == nil {
		t.Fatal("malformed cron spec must be rejected")
	}
}
