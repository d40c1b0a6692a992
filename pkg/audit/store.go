// Package audit persists a durable trail of sub-agent runs.
package audit

import (
	"context"
	"time"
)

// RunRecord captures one completed spawn, successful or not.
type RunRecord struct {
	ID         string
	Role       string
	Task       string
	Success    bool
	Report     string
	ToolCalls  []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Role    string
	Success *bool
	Limit   int
}

// RunStore records and queries run history. Implementations must be
// safe for concurrent use; a Record failure never fails the run it
// describes.
type RunStore interface {
	Record(ctx context.Context, rec RunRecord) error
	List(ctx context.Context, filter Filter) ([]RunRecord, error)
}
