package models

import "time"

const (
	EventRosterUpdated     = "roster.updated"
	EventAnalysisCompleted = "analysis.completed"
)

// Event is a domain notification published to downstream consumers.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// RosterSnapshot is the observable roster state.
type RosterSnapshot struct {
	Assets    []Asset   `json:"assets"`
	IDs       []string  `json:"ids"`
	Busy      bool      `json:"busy"`
	UpdatedAt time.Time `json:"updated_at"`
}
