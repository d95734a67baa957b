package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"jobpulse/internal/aggregate"
	"jobpulse/internal/domain"
)

// Aggregator is the engine surface the dispatcher needs; tests fake it.
type Aggregator interface {
	SearchJobs(ctx context.Context, req domain.SearchRequest) []domain.JobRecord
}

// ActivityRecorder receives fire-and-forget telemetry.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, ev domain.ActivityEvent)
}

type Dispatcher struct {
	agg           Aggregator
	recorder      ActivityRecorder
	maxResults    int
	searchTimeout time.Duration
	logger        *log.Logger
}

func NewDispatcher(agg Aggregator, recorder ActivityRecorder, maxResults int, logger *log.Logger) *Dispatcher {
	if maxResults <= 0 {
		maxResults = 50
	}
	return &Dispatcher{
		agg:           agg,
		recorder:      recorder,
		maxResults:    maxResults,
		searchTimeout: 30 * time.Second,
		logger:        logger,
	}
}

// Handle routes one inbound frame. Malformed frames and unknown events are
// logged and skipped; they never take the connection down.
func (d *Dispatcher) Handle(c *Client, raw []byte) {
	if d == nil || c == nil {
		return
	}

	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if d.logger != nil {
			d.logger.Printf("relay: malformed frame | user=%q err=%v", c.userID, err)
		}
		return
	}

	switch env.Event {
	case domain.EventJobsSearch:
		d.handleSearch(c, env)
	case domain.EventTrackActivity, domain.EventTrackView:
		d.handleTrack(c, env)
	case domain.EventMessageSend:
		d.handleMessageSend(c, env)
	case domain.EventMessageTyping:
		d.handleMessageTyping(c, env)
	case domain.EventNotificationNew:
		d.handleNotification(c, env)
	case domain.EventNotificationRead:
		d.handleNotificationRead(c, env)
	default:
		if d.logger != nil {
			d.logger.Printf("relay: unknown event | event=%q user=%q", env.Event, c.userID)
		}
	}
}

// handleSearch runs the aggregation off the read pump so a slow upstream
// never blocks the connection. Every failure path emits jobs:error with the
// request's correlation id; a request is never silently dropped.
func (d *Dispatcher) handleSearch(c *Client, env domain.Envelope) {
	var req domain.SearchRequest
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			d.sendError(c, env.RequestID, "invalid search payload")
			return
		}
	}
	// An empty search (no query, no location) is accepted.

	if req.Limit <= 0 || req.Limit > d.maxResults {
		req.Limit = d.maxResults
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				if d.logger != nil {
					d.logger.Printf("relay: aggregation panic | user=%q err=%v", c.userID, r)
				}
				d.sendError(c, env.RequestID, "aggregation failed")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.searchTimeout)
		defer cancel()

		jobs := d.agg.SearchJobs(ctx, req)
		if len(jobs) > req.Limit {
			jobs = jobs[:req.Limit]
		}

		results := domain.SearchResults{
			Count:   len(jobs),
			Sources: aggregate.ContributingSources(jobs),
			Jobs:    jobs,
		}
		out, err := domain.NewEnvelope(domain.EventJobsResults, env.RequestID, results)
		if err != nil {
			d.sendError(c, env.RequestID, "encoding results failed")
			return
		}
		c.SendEnvelope(out)
	}()
}

func (d *Dispatcher) handleTrack(c *Client, env domain.Envelope) {
	if d.recorder == nil {
		return
	}
	var ev domain.ActivityEvent
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			if d.logger != nil {
				d.logger.Printf("relay: malformed tracking payload | user=%q err=%v", c.userID, err)
			}
			return
		}
	}
	if ev.UserID == "" {
		ev.UserID = c.userID
	}
	if ev.Action == "" && env.Event == domain.EventTrackView {
		ev.Action = "profile_view"
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.recorder.RecordActivity(ctx, ev)
	}()
}

func (d *Dispatcher) handleMessageSend(c *Client, env domain.Envelope) {
	var msg domain.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		if d.logger != nil {
			d.logger.Printf("relay: malformed message | user=%q err=%v", c.userID, err)
		}
		return
	}
	if msg.From == "" {
		msg.From = c.userID
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	d.routeToUser(c, msg.To, domain.EventMessageNew, msg)
}

func (d *Dispatcher) handleMessageTyping(c *Client, env domain.Envelope) {
	var msg domain.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		return
	}
	if msg.From == "" {
		msg.From = c.userID
	}
	msg.Typing = true
	d.routeToUser(c, msg.To, domain.EventMessageTyping, msg)
}

func (d *Dispatcher) handleNotification(c *Client, env domain.Envelope) {
	var n domain.Notification
	if err := json.Unmarshal(env.Data, &n); err != nil {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	d.routeToUser(c, n.UserID, domain.EventNotificationNew, n)
}

// handleNotificationRead fans the read marker out to the user's other
// devices so every open session converges.
func (d *Dispatcher) handleNotificationRead(c *Client, env domain.Envelope) {
	if c.userID == "" {
		return
	}
	out := domain.Envelope{Event: domain.EventNotificationRead, RequestID: env.RequestID, Data: env.Data}
	b, err := json.Marshal(out)
	if err != nil {
		return
	}
	c.hub.SendToUser(c.userID, b)
}

func (d *Dispatcher) routeToUser(c *Client, userID, event string, payload any) {
	if userID == "" {
		if d.logger != nil {
			d.logger.Printf("relay: drop unroutable event | event=%s from=%q", event, c.userID)
		}
		return
	}
	env, err := domain.NewEnvelope(event, "", payload)
	if err != nil {
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	c.hub.SendToUser(userID, b)
}

func (d *Dispatcher) sendError(c *Client, requestID, message string) {
	env, err := domain.NewEnvelope(domain.EventJobsError, requestID, domain.ErrorPayload{Message: message})
	if err != nil {
		env = domain.Envelope{Event: domain.EventJobsError, RequestID: requestID,
			Data: json.RawMessage(fmt.Sprintf(`{"message":%q}`, message))}
	}
	c.SendEnvelope(env)
}
