package domain

import "time"

// Exchange is one journaled chat round trip.
type Exchange struct {
	ID            string
	CorrelationID string
	Message       string
	Response      string
	Provider      string
	Fallback      bool
	CreatedAt     time.Time
}
