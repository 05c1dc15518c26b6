package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a recommendation job.
type JobStatus string

const (
	StatusQueued    JobStatus = "QUEUED"
	StatusRunning   JobStatus = "RUNNING"
	StatusSucceeded JobStatus = "SUCCEEDED"
	StatusFailed    JobStatus = "FAILED"
	StatusCancelled JobStatus = "CANCELLED"
)

// IsTerminal returns true if the status represents a final state.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// RecommendationEvent is published to the message broker whenever a
// recommendation job reaches a terminal state.
type RecommendationEvent struct {
	JobID      uuid.UUID `json:"job_id"`
	Principal  string    `json:"principal"`
	DeckID     int       `json:"deck_id"`
	Status     JobStatus `json:"status"`
	Cards      []string  `json:"cards,omitempty"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// RecommendationResult is the stored outcome of the last completed
// recommendation for a principal.
type RecommendationResult struct {
	DeckID     int       `json:"deck_id"`
	Cards      []string  `json:"cards"`
	FinishedAt time.Time `json:"finished_at"`
}
