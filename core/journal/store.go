// Package journal persists scheduler assignment decisions and answers
// time-range queries over them.
package journal

import (
	"context"
	"time"

	"github.com/kilianp07/elevsim/core/model"
)

// LogRecord captures one call assignment.
type LogRecord struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Floor      int             `json:"floor"`
	Direction  model.Direction `json:"direction"`
	ElevatorID int             `json:"elevator_id"`
	Rule       string          `json:"rule"`
	WaitedMS   int64           `json:"waited_ms"`
}

// Waited returns the time the call spent pending.
func (r LogRecord) Waited() time.Duration {
	return time.Duration(r.WaitedMS) * time.Millisecond
}

// LogQuery selects records. Zero values match everything. Results are
// ordered by timestamp; a positive Limit keeps only the latest records.
type LogQuery struct {
	Start      time.Time
	End        time.Time
	ElevatorID *int
	Rule       string
	Limit      int
}

// Match reports whether r passes every filter of q.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.ElevatorID != nil && r.ElevatorID != *q.ElevatorID {
		return false
	}
	if q.Rule != "" && r.Rule != q.Rule {
		return false
	}
	return true
}

// latest applies q.Limit to records already sorted by timestamp.
func (q LogQuery) latest(recs []LogRecord) []LogRecord {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// CountByRule tallies records per scheduler rule.
func CountByRule(recs []LogRecord) map[string]int {
	out := make(map[string]int)
	for _, r := range recs {
		out[r.Rule]++
	}
	return out
}

// Store persists LogRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
