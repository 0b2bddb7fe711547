package command

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridmon/core/command/journal"
	"github.com/kilianp07/gridmon/core/events"
	"github.com/kilianp07/gridmon/core/logger"
	"github.com/kilianp07/gridmon/core/metrics"
)

var (
	ErrNotApplied    = errors.New("command was not applied")
	ErrAlreadyUndone = errors.New("command already undone")
	ErrNothingToUndo = errors.New("no command to undo")
)

// Execution is the outcome of one Execute call.
type Execution struct {
	ID       string
	Command  Command
	Snapshot Snapshot
	Err      error
	At       time.Time

	exec   *Executor
	undone bool
}

// Applied reports whether the command changed the store.
func (e *Execution) Applied() bool { return e.Err == nil }

// Undone reports whether the execution was reverted.
func (e *Execution) Undone() bool {
	e.exec.mu.Lock()
	defer e.exec.mu.Unlock()
	return e.undone
}

// Undo restores the snapshot. It can succeed at most once.
func (e *Execution) Undo(ctx context.Context) error {
	e.exec.mu.Lock()
	defer e.exec.mu.Unlock()
	return e.exec.undoLocked(ctx, e)
}

// Executor applies commands one at a time and remembers them for undo.
type Executor struct {
	mu      sync.Mutex
	store   Store
	journal journal.Store
	sink    metrics.Sink
	bus     events.Publisher
	log     logger.Logger
	history []*Execution
	now     func() time.Time
}

// NewExecutor creates an Executor. A nil journal discards records.
func NewExecutor(store Store, j journal.Store, sink metrics.Sink, bus events.Publisher, log logger.Logger) *Executor {
	if j == nil {
		j = journal.Nop{}
	}
	return &Executor{
		store:   store,
		journal: j,
		sink:    metrics.OrNop(sink),
		bus:     bus,
		log:     logger.OrNop(log),
		now:     time.Now,
	}
}

// Execute applies cmd. A failed command is still recorded and returned with
// the error; it cannot be undone.
func (x *Executor) Execute(ctx context.Context, cmd Command) (*Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	snap, err := cmd.Apply(x.store)
	e := &Execution{ID: uuid.NewString(), Command: cmd, Snapshot: snap, Err: err, At: x.now(), exec: x}
	if err == nil {
		x.history = append(x.history, e)
	}
	x.record(ctx, e, journal.ActionExecute, err)
	return e, err
}

// UndoLast reverts the most recent execution that has not been undone.
func (x *Executor) UndoLast(ctx context.Context) (*Execution, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i := len(x.history) - 1; i >= 0; i-- {
		e := x.history[i]
		if e.undone {
			continue
		}
		return e, x.undoLocked(ctx, e)
	}
	return nil, ErrNothingToUndo
}

// History returns successful executions, oldest first.
func (x *Executor) History() []*Execution {
	x.mu.Lock()
	defer x.mu.Unlock()
	res := make([]*Execution, len(x.history))
	copy(res, x.history)
	return res
}

func (x *Executor) undoLocked(ctx context.Context, e *Execution) error {
	if e.Err != nil {
		return ErrNotApplied
	}
	if e.undone {
		return ErrAlreadyUndone
	}
	err := e.Command.Revert(x.store, e.Snapshot)
	if err == nil {
		e.undone = true
	}
	x.record(ctx, e, journal.ActionUndo, err)
	return err
}

func operator(cmd Command) string {
	switch c := cmd.(type) {
	case SwitchStatus:
		return c.Operator
	case LoadReduction:
		return c.Operator
	}
	return ""
}

func (x *Executor) record(ctx context.Context, e *Execution, action string, err error) {
	now := x.now()
	kind := string(e.Command.Kind())
	rec := journal.Record{
		Timestamp:   now,
		ExecutionID: e.ID,
		Kind:        kind,
		Target:      e.Command.Target(),
		Operator:    operator(e.Command),
		Action:      action,
		OK:          err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
		x.log.Warnf("command %s %s on %s failed: %v", kind, action, rec.Target, err)
	} else {
		x.log.Infof("command %s %s on %s by %s", kind, action, rec.Target, rec.Operator)
	}
	if jerr := x.journal.Append(context.WithoutCancel(ctx), rec); jerr != nil {
		x.log.Errorf("journal append failed: %v", jerr)
	}
	if r, ok := x.sink.(metrics.CommandRecorder); ok {
		if merr := r.RecordCommand(metrics.CommandEvent{Kind: kind, Action: action, OK: rec.OK, Time: now}); merr != nil {
			x.log.Errorf("command metrics error: %v", merr)
		}
	}
	events.Emit(x.bus, events.CommandEvent{
		ExecutionID: e.ID,
		Kind:        kind,
		Target:      rec.Target,
		Operator:    rec.Operator,
		Action:      action,
		Err:         err,
		Time:        now,
	})
}
