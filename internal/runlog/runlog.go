// Package runlog records run-level metadata for past checks. It stores
// only counters and outcomes; detected endpoint records are never
// persisted.
package runlog

import (
	"time"

	"github.com/google/uuid"
)

// Notification outcomes for a run.
const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
)

// Run summarizes one check invocation.
type Run struct {
	ID             string     `json:"id"`
	FromRevision   string     `json:"fromRevision"`
	ToRevision     string     `json:"toRevision"`
	FilesChanged   int        `json:"filesChanged"`
	EndpointsFound int        `json:"endpointsFound"`
	FallbacksUsed  int        `json:"fallbacksUsed"`
	Notification   string     `json:"notification"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// NewRun creates a run for the given revision range, stamped now.
func NewRun(from, to string) *Run {
	return &Run{
		ID:           uuid.New().String(),
		FromRevision: from,
		ToRevision:   to,
		Notification: NotifySkipped,
		StartedAt:    time.Now().UTC(),
	}
}

// Complete stamps the completion time.
func (r *Run) Complete() {
	now := time.Now().UTC()
	r.CompletedAt = &now
}
