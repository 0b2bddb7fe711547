// Package journal keeps an audit trail of operator commands.
package journal

import (
	"context"
	"fmt"
	"time"
)

// Actions recorded in the journal.
const (
	ActionExecute = "execute"
	ActionUndo    = "undo"
)

// Record captures one execution or undo of a command.
type Record struct {
	Timestamp   time.Time `json:"timestamp"`
	ExecutionID string    `json:"execution_id"`
	Kind        string    `json:"kind"`
	Target      string    `json:"target"`
	Operator    string    `json:"operator,omitempty"`
	Action      string    `json:"action"`
	OK          bool      `json:"ok"`
	Error       string    `json:"error,omitempty"`
}

// Query filters records. Zero fields match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Target string
	Kind   string
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	return q.Target == "" || r.Target == q.Target
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Nop discards records.
type Nop struct{}

func (Nop) Append(context.Context, Record) error           { return nil }
func (Nop) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (Nop) Close() error                                   { return nil }

// Options selects and tunes a backend.
type Options struct {
	// Backend is "jsonl", "sqlite" or "none".
	Backend string
	Path    string
	// MaxSizeMB enables rotation of the jsonl backend when positive.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Open creates the Store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", "none":
		return Nop{}, nil
	case "jsonl":
		if opts.MaxSizeMB > 0 {
			return NewRotatingJSONLStore(opts.Path, opts.MaxSizeMB, opts.MaxBackups, opts.MaxAgeDays)
		}
		return NewJSONLStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown journal backend %q", opts.Backend)
	}
}
