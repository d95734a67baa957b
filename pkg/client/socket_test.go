package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobpulse/internal/domain"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// relayServer is a minimal in-test relay endpoint.
type relayServer struct {
	*httptest.Server
	handle func(conn *websocket.Conn)
}

func newRelayServer(t *testing.T, handle func(conn *websocket.Conn)) *relayServer {
	t.Helper()
	rs := &relayServer{handle: handle}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		rs.handle(conn)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *relayServer) wsURL() string {
	return "ws" + strings.TrimPrefix(rs.URL, "http")
}

func waitForState(t *testing.T, s *Socket, want ConnectionState) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for s.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state %s, want %s", s.State(), want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestEmitBeforeConnectIsLoggedNoOp(t *testing.T) {
	var buf strings.Builder
	s := NewSocket("ws://unused", domain.AuthPayload{}, log.New(&buf, "", 0))

	s.Emit(domain.EventJobsSearch, domain.SearchRequest{Query: "go"})

	if s.State() != StateDisconnected {
		t.Fatalf("state %s, want disconnected", s.State())
	}
	if !strings.Contains(buf.String(), "not connected") {
		t.Errorf("skipped emit not logged: %q", buf.String())
	}
}

func TestConnectAndReceiveEvent(t *testing.T) {
	srv := newRelayServer(t, func(conn *websocket.Conn) {
		env, _ := domain.NewEnvelope(domain.EventJobNew, "", domain.JobRecord{Title: "Go Developer"})
		b, _ := json.Marshal(env)
		_ = conn.WriteMessage(websocket.TextMessage, b)
		// Keep the connection open until the client leaves.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	s := NewSocket(srv.wsURL(), domain.AuthPayload{UserID: "u1"}, nil)
	got := make(chan domain.Envelope, 1)
	s.On(domain.EventJobNew, func(env domain.Envelope) { got <- env })

	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	select {
	case env := <-got:
		var job domain.JobRecord
		if err := json.Unmarshal(env.Data, &job); err != nil || job.Title != "Go Developer" {
			t.Fatalf("unexpected payload %s", env.Data)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("event never delivered")
	}
}

func TestOnOffListeners(t *testing.T) {
	s := NewSocket("ws://unused", domain.AuthPayload{}, nil)

	var a, b int
	idA := s.On("x", func(domain.Envelope) { a++ })
	s.On("x", func(domain.Envelope) { b++ })

	s.dispatch(domain.Envelope{Event: "x"})
	s.Off("x", idA)
	s.dispatch(domain.Envelope{Event: "x"})

	if a != 1 || b != 2 {
		t.Fatalf("a=%d b=%d, want 1 and 2", a, b)
	}
}

func TestListenerPanicIsolated(t *testing.T) {
	var buf strings.Builder
	s := NewSocket("ws://unused", domain.AuthPayload{}, log.New(&buf, "", 0))

	var reached bool
	s.On("x", func(domain.Envelope) { panic("bad listener") })
	s.On("x", func(domain.Envelope) { reached = true })

	s.dispatch(domain.Envelope{Event: "x"})

	if !reached {
		t.Fatal("panicking listener blocked the next one")
	}
	if !strings.Contains(buf.String(), "panic") {
		t.Errorf("panic not logged: %q", buf.String())
	}
}

// Push updates for job:new and job:updated flow through the typed subject,
// decoded once per frame.
func TestJobUpdatesDeliversTypedRecords(t *testing.T) {
	s := NewSocket("ws://unused", domain.AuthPayload{}, nil)

	var got []domain.JobRecord
	sub := s.JobUpdates().Subscribe(func(job domain.JobRecord) { got = append(got, job) })

	created, _ := domain.NewEnvelope(domain.EventJobNew, "", domain.JobRecord{Title: "Go Developer", Company: "Acme"})
	updated, _ := domain.NewEnvelope(domain.EventJobUpdated, "", domain.JobRecord{Title: "Senior Go Developer"})
	s.dispatch(created)
	s.dispatch(updated)

	if len(got) != 2 || got[0].Title != "Go Developer" || got[1].Title != "Senior Go Developer" {
		t.Fatalf("typed feed delivered %+v", got)
	}

	s.JobUpdates().Unsubscribe(sub)
	s.dispatch(created)
	if len(got) != 2 {
		t.Fatal("unsubscribed callback still invoked")
	}
}

func TestJobUpdatesSkipsMalformedPayload(t *testing.T) {
	var buf strings.Builder
	s := NewSocket("ws://unused", domain.AuthPayload{}, log.New(&buf, "", 0))

	var calls int
	s.JobUpdates().Subscribe(func(domain.JobRecord) { calls++ })

	s.dispatch(domain.Envelope{Event: domain.EventJobNew, Data: json.RawMessage(`{"title":12}`)})

	if calls != 0 {
		t.Fatal("malformed payload reached subscribers")
	}
	if !strings.Contains(buf.String(), "malformed job push") {
		t.Errorf("malformed push not logged: %q", buf.String())
	}
}

// A dropped connection triggers bounded reconnection; once the ceiling is
// hit the socket parks in the error state until Reconnect is called.
func TestReconnectCeilingThenManualReconnect(t *testing.T) {
	var accepting atomic.Bool
	accepting.Store(true)

	var mu sync.Mutex
	conns := make([]*websocket.Conn, 0, 2)

	srv := newRelayServer(t, func(conn *websocket.Conn) {
		mu.Lock()
		conns = append(conns, conn)
		mu.Unlock()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	var dials atomic.Int32
	dial := func(ctx context.Context, _ string) (*websocket.Conn, error) {
		dials.Add(1)
		if !accepting.Load() {
			return nil, fmt.Errorf("connection refused")
		}
		dialer := websocket.Dialer{HandshakeTimeout: time.Second}
		conn, _, err := dialer.DialContext(ctx, srv.wsURL(), nil)
		return conn, err
	}

	s := NewSocket("ws://ignored", domain.AuthPayload{}, nil,
		WithDialFunc(dial), WithBackoffBase(time.Millisecond))

	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitForState(t, s, StateConnected)

	// Take the server away and sever the live connection.
	accepting.Store(false)
	mu.Lock()
	_ = conns[0].Close()
	mu.Unlock()

	waitForState(t, s, StateError)

	// 1 initial dial + 5 bounded attempts, no more.
	if got := dials.Load(); got != 6 {
		t.Fatalf("dial count %d, want 6", got)
	}

	// Manual recovery resets the counter and reconnects.
	accepting.Store(true)
	if err := s.Reconnect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitForState(t, s, StateConnected)
	_ = s.Close()
}

// A server-initiated close frame earns one immediate retry before the
// backoff schedule would apply.
func TestServerCloseFrameReconnectsImmediately(t *testing.T) {
	var served atomic.Int32
	srv := newRelayServer(t, func(conn *websocket.Conn) {
		if served.Add(1) == 1 {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "restarting")
			_ = conn.WriteMessage(websocket.CloseMessage, msg)
			// Give the client a moment to read the frame before tearing down.
			time.Sleep(50 * time.Millisecond)
			_ = conn.Close()
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	var dials atomic.Int32
	dial := func(ctx context.Context, _ string) (*websocket.Conn, error) {
		dials.Add(1)
		dialer := websocket.Dialer{HandshakeTimeout: time.Second}
		conn, _, err := dialer.DialContext(ctx, srv.wsURL(), nil)
		return conn, err
	}

	// With an hour of backoff, only a non-backoff dial can bring the socket
	// back within the test deadline.
	s := NewSocket("ws://ignored", domain.AuthPayload{}, nil,
		WithDialFunc(dial), WithBackoffBase(time.Hour))

	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitForState(t, s, StateConnected)

	deadline := time.Now().Add(3 * time.Second)
	for dials.Load() != 2 || s.State() != StateConnected {
		if time.Now().After(deadline) {
			t.Fatalf("dials=%d state=%s, want one immediate extra dial back to connected",
				dials.Load(), s.State())
		}
		time.Sleep(2 * time.Millisecond)
	}
	_ = s.Close()
}

func TestPendingClearedOnDisconnect(t *testing.T) {
	srv := newRelayServer(t, func(conn *websocket.Conn) {
		// Accept and drop without answering anything.
		time.Sleep(20 * time.Millisecond)
		_ = conn.Close()
	})

	s := NewSocket(srv.wsURL(), domain.AuthPayload{}, nil, WithBackoffBase(time.Hour))
	if err := s.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ch := s.registerPending(domain.EventJobsResults, domain.EventJobsError, "req-1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel close, not a delivery")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("pending waiter not cleared on disconnect")
	}
}

func TestDeliverPendingMatchesRequestID(t *testing.T) {
	s := NewSocket("ws://unused", domain.AuthPayload{}, nil)

	ch := s.registerPending(domain.EventJobsResults, domain.EventJobsError, "req-1")

	// Wrong id: ignored.
	s.deliverPending(domain.Envelope{Event: domain.EventJobsResults, RequestID: "other"})
	// Wrong event for this id: ignored, waiter stays armed.
	s.deliverPending(domain.Envelope{Event: domain.EventJobNew, RequestID: "req-1"})

	select {
	case <-ch:
		t.Fatal("waiter fired on a non-matching envelope")
	default:
	}

	s.deliverPending(domain.Envelope{Event: domain.EventJobsResults, RequestID: "req-1"})
	select {
	case env := <-ch:
		if env.RequestID != "req-1" {
			t.Fatalf("delivered %+v", env)
		}
	default:
		t.Fatal("matching envelope not delivered")
	}
}

func TestConnectTwiceIsNoOp(t *testing.T) {
	srv := newRelayServer(t, func(conn *websocket.Conn) {
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

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("second connect should be a no-op, got %v", err)
	}
}
