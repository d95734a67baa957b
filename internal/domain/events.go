package domain

import (
	"encoding/json"
	"time"
)

// Event names carried in the envelope. The transport-level connect /
// disconnect / connect_error lifecycle is owned by the websocket layer and
// never appears on the wire as an envelope.
const (
	EventJobsSearch  = "jobs:search"
	EventJobsResults = "jobs:results"
	EventJobsError   = "jobs:error"

	EventJobNew     = "job:new"
	EventJobUpdated = "job:updated"
	EventJobDeleted = "job:deleted"

	EventNotificationNew  = "notification:new"
	EventNotificationRead = "notification:read"

	EventMessageNew    = "message:new"
	EventMessageSend   = "message:send"
	EventMessageTyping = "message:typing"

	EventTrackView     = "analytics:track_view"
	EventTrackActivity = "activity:track"
)

// Envelope is the single wire format for every relayed event. RequestID
// correlates a response to the request that produced it, so overlapping
// requests on one connection cannot cross-deliver.
type Envelope struct {
	Event     string          `json:"event"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func NewEnvelope(event, requestID string, data any) (Envelope, error) {
	env := Envelope{Event: event, RequestID: requestID}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Envelope{}, err
		}
		env.Data = b
	}
	return env, nil
}

type SearchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
}

type SearchResults struct {
	Count   int         `json:"count"`
	Sources []string    `json:"sources"`
	Jobs    []JobRecord `json:"jobs"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// AuthPayload re-establishes identity on every connection. The token is
// opaque here; cryptographic verification belongs to an external collaborator.
type AuthPayload struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Typing    bool      `json:"typing,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
