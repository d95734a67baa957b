// Package client is the consumer half of the event relay: one persistent
// websocket connection with bounded auto-reconnect, per-event typed subjects
// for delivery, and correlation-id request/response pairing on top of it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"jobpulse/internal/domain"

	"github.com/gorilla/websocket"
)

const (
	// maxReconnectAttempts bounds automatic reconnection; after the ceiling
	// is hit an explicit Reconnect call is required.
	maxReconnectAttempts = 5
	defaultBackoffBase   = 500 * time.Millisecond
	dialTimeout          = 10 * time.Second
)

type dialFunc func(ctx context.Context, url string) (*websocket.Conn, error)

// Listener receives every envelope for the event it registered under.
type Listener func(env domain.Envelope)

type pendingRequest struct {
	resultEvent string
	errorEvent  string
	ch          chan domain.Envelope
}

// Socket owns exactly one relay connection. All methods are safe for
// concurrent use.
type Socket struct {
	rawURL  string
	auth    domain.AuthPayload
	dial    dialFunc
	backoff time.Duration
	logger  *log.Logger

	state atomic.Int32

	mu          sync.Mutex
	conn        *websocket.Conn
	subjects    map[string]*Subject[domain.Envelope]
	jobUpdates  *Subject[domain.JobRecord]
	pending     map[string]pendingRequest
	attempts    int
	closed      bool
	reconnectOn bool
	gen         uint64 // increments per successful connect; stales old read loops

	writeMu sync.Mutex
}

type SocketOption func(*Socket)

// WithBackoffBase shortens or stretches the reconnect backoff; tests use it.
func WithBackoffBase(d time.Duration) SocketOption {
	return func(s *Socket) {
		if d > 0 {
			s.backoff = d
		}
	}
}

// WithDialFunc replaces the websocket dialer; tests use it.
func WithDialFunc(fn dialFunc) SocketOption {
	return func(s *Socket) {
		if fn != nil {
			s.dial = fn
		}
	}
}

func NewSocket(rawURL string, auth domain.AuthPayload, logger *log.Logger, opts ...SocketOption) *Socket {
	s := &Socket{
		rawURL:   rawURL,
		auth:     auth,
		backoff:  defaultBackoffBase,
		logger:   logger,
		subjects: make(map[string]*Subject[domain.Envelope]),
		pending:  make(map[string]pendingRequest),
	}
	s.jobUpdates = NewSubject[domain.JobRecord](logger)
	s.dial = s.defaultDial
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Socket) defaultDial(ctx context.Context, rawURL string) (*websocket.Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if s.auth.Token != "" {
		q.Set("token", s.auth.Token)
	}
	if s.auth.UserID != "" {
		q.Set("user_id", s.auth.UserID)
	}
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

func (s *Socket) State() ConnectionState {
	return ConnectionState(s.state.Load())
}

func (s *Socket) setState(st ConnectionState) {
	s.state.Store(int32(st))
}

// Connect establishes the connection and starts the read loop. Connecting an
// already-connected socket is a no-op.
func (s *Socket) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		return nil
	}
	s.closed = false
	s.mu.Unlock()

	return s.connectOnce(ctx)
}

func (s *Socket) connectOnce(ctx context.Context) error {
	s.setState(StateConnecting)
	conn, err := s.dial(ctx, s.rawURL)
	if err != nil {
		s.setState(StateError)
		return fmt.Errorf("relay dial: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.attempts = 0
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.setState(StateConnected)
	if s.logger != nil {
		s.logger.Printf("socket: connected | url=%s", s.rawURL)
	}

	go s.readLoop(conn, gen)
	return nil
}

// Close tears the connection down and disables automatic reconnection.
func (s *Socket) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.failPending(fmt.Errorf("socket closed"))
	s.setState(StateDisconnected)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Reconnect is the manual path required once the automatic attempt ceiling
// has been hit. It resets the counter and dials again.
func (s *Socket) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	s.closed = false
	s.attempts = 0
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	return s.connectOnce(ctx)
}

// subject returns the per-event subject, creating it on first use.
func (s *Socket) subject(event string) *Subject[domain.Envelope] {
	s.mu.Lock()
	defer s.mu.Unlock()
	subj := s.subjects[event]
	if subj == nil {
		subj = NewSubject[domain.Envelope](s.logger)
		s.subjects[event] = subj
	}
	return subj
}

// On registers a listener for an event name and returns its removal id.
// Listeners run in registration order; one panicking listener does not stop
// the others. Delivery goes through the event's Subject, so Subscribe on the
// same subject and On on the socket share one dispatch path.
func (s *Socket) On(event string, fn Listener) int {
	if fn == nil {
		return -1
	}
	sub := s.subject(event).Subscribe(func(env domain.Envelope) { fn(env) })
	return sub.id
}

// Off removes the listener registered under id for the event.
func (s *Socket) Off(event string, id int) {
	s.mu.Lock()
	subj := s.subjects[event]
	s.mu.Unlock()
	if subj != nil {
		subj.Unsubscribe(Subscription{id: id})
	}
}

// JobUpdates is the typed feed of job records pushed by the relay
// (job:new and job:updated), decoded once and published to all subscribers.
func (s *Socket) JobUpdates() *Subject[domain.JobRecord] {
	return s.jobUpdates
}

// Emit sends one event. Emitting while not connected is a logged no-op: the
// frame is neither queued nor an error raised.
func (s *Socket) Emit(event string, payload any) {
	s.emitWithID(event, "", payload)
}

func (s *Socket) emitWithID(event, requestID string, payload any) {
	if s.State() != StateConnected {
		if s.logger != nil {
			s.logger.Printf("socket: emit skipped, not connected | event=%s state=%s", event, s.State())
		}
		return
	}

	env, err := domain.NewEnvelope(event, requestID, payload)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("socket: emit skipped, bad payload | event=%s err=%v", event, err)
		}
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		return
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	s.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, b)
	s.writeMu.Unlock()
	if err != nil && s.logger != nil {
		s.logger.Printf("socket: write failed | event=%s err=%v", event, err)
	}
}

// registerPending installs a correlation waiter and returns its request id.
func (s *Socket) registerPending(resultEvent, errorEvent, requestID string) chan domain.Envelope {
	ch := make(chan domain.Envelope, 1)
	s.mu.Lock()
	s.pending[requestID] = pendingRequest{resultEvent: resultEvent, errorEvent: errorEvent, ch: ch}
	s.mu.Unlock()
	return ch
}

func (s *Socket) dropPending(requestID string) {
	s.mu.Lock()
	delete(s.pending, requestID)
	s.mu.Unlock()
}

// failPending clears every in-flight waiter. Called on disconnect so a
// request re-issued on the next connection can never receive a stale
// response from the abandoned one.
func (s *Socket) failPending(err error) {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]pendingRequest)
	s.mu.Unlock()

	for _, p := range pending {
		close(p.ch)
	}
	if len(pending) > 0 && s.logger != nil {
		s.logger.Printf("socket: cleared pending requests | count=%d reason=%v", len(pending), err)
	}
}

func (s *Socket) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.handleDisconnect(conn, gen, err)
			return
		}

		var env domain.Envelope
		if jsonErr := json.Unmarshal(message, &env); jsonErr != nil {
			if s.logger != nil {
				s.logger.Printf("socket: malformed frame | err=%v", jsonErr)
			}
			continue
		}

		s.deliverPending(env)
		s.dispatch(env)
	}
}

func (s *Socket) deliverPending(env domain.Envelope) {
	if env.RequestID == "" {
		return
	}
	s.mu.Lock()
	p, ok := s.pending[env.RequestID]
	if ok && (env.Event == p.resultEvent || env.Event == p.errorEvent) {
		delete(s.pending, env.RequestID)
	} else {
		ok = false
	}
	s.mu.Unlock()

	if ok {
		p.ch <- env
	}
}

// dispatch publishes the envelope to the event's subject and feeds the typed
// subjects for the push events that carry a known payload shape.
func (s *Socket) dispatch(env domain.Envelope) {
	s.mu.Lock()
	subj := s.subjects[env.Event]
	s.mu.Unlock()
	if subj != nil {
		subj.Publish(env)
	}

	switch env.Event {
	case domain.EventJobNew, domain.EventJobUpdated:
		var job domain.JobRecord
		if err := json.Unmarshal(env.Data, &job); err != nil {
			if s.logger != nil {
				s.logger.Printf("socket: malformed job push | event=%s err=%v", env.Event, err)
			}
			return
		}
		s.jobUpdates.Publish(job)
	}
}

func (s *Socket) handleDisconnect(conn *websocket.Conn, gen uint64, cause error) {
	s.mu.Lock()
	if s.gen != gen {
		// A newer connection owns the socket; this loop is stale.
		s.mu.Unlock()
		return
	}
	s.conn = nil
	closed := s.closed
	alreadyReconnecting := s.reconnectOn
	if !closed {
		s.reconnectOn = true
	}
	s.mu.Unlock()

	_ = conn.Close()
	s.failPending(cause)
	s.setState(StateDisconnected)

	if closed || alreadyReconnecting {
		return
	}

	if s.logger != nil {
		s.logger.Printf("socket: disconnected | err=%v", cause)
	}

	// A server-initiated close gets one immediate retry before the bounded
	// backoff path takes over.
	immediate := websocket.IsCloseError(cause,
		websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseServiceRestart)

	go s.reconnectLoop(immediate)
}

func (s *Socket) reconnectLoop(immediate bool) {
	defer func() {
		s.mu.Lock()
		s.reconnectOn = false
		s.mu.Unlock()
	}()

	if immediate {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		err := s.connectOnce(ctx)
		cancel()
		if err == nil {
			return
		}
		if s.logger != nil {
			s.logger.Printf("socket: immediate reconnect failed | err=%v", err)
		}
	}

	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.attempts++
		attempt := s.attempts
		s.mu.Unlock()

		if attempt > maxReconnectAttempts {
			s.setState(StateError)
			if s.logger != nil {
				s.logger.Printf("socket: reconnect ceiling reached | attempts=%d, manual Reconnect required", maxReconnectAttempts)
			}
			return
		}

		time.Sleep(s.backoff * time.Duration(1<<(attempt-1)))

		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		err := s.connectOnce(ctx)
		cancel()
		if err == nil {
			return
		}
		if s.logger != nil {
			s.logger.Printf("socket: reconnect attempt failed | attempt=%d err=%v", attempt, err)
		}
	}
}
