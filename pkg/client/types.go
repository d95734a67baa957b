package client

import "jobpulse/internal/domain"

// Re-exports of the shared record shapes so importers of this package can
// name them without reaching into internal packages.
type (
	JobRecord         = domain.JobRecord
	CompanyRecord     = domain.CompanyRecord
	AnalyticsSnapshot = domain.AnalyticsSnapshot
	ActivityEvent     = domain.ActivityEvent
	SearchRequest     = domain.SearchRequest
	SearchResults     = domain.SearchResults
	Envelope          = domain.Envelope
	ErrorPayload      = domain.ErrorPayload
	AuthPayload       = domain.AuthPayload
	Notification      = domain.Notification
	Message           = domain.Message
	Source            = domain.Source
)

const (
	EventJobsSearch  = domain.EventJobsSearch
	EventJobsResults = domain.EventJobsResults
	EventJobsError   = domain.EventJobsError

	EventJobNew     = domain.EventJobNew
	EventJobUpdated = domain.EventJobUpdated
	EventJobDeleted = domain.EventJobDeleted

	EventNotificationNew  = domain.EventNotificationNew
	EventNotificationRead = domain.EventNotificationRead

	EventMessageNew    = domain.EventMessageNew
	EventMessageSend   = domain.EventMessageSend
	EventMessageTyping = domain.EventMessageTyping

	EventTrackView     = domain.EventTrackView
	EventTrackActivity = domain.EventTrackActivity
)
