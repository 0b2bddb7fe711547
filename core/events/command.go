package events

import "time"

// CommandEvent is emitted by the command executor. Action is "execute" or "undo".
type CommandEvent struct {
	ExecutionID string
	Kind        string
	Target      string
	Operator    string
	Action      string
	Err         error
	Time        time.Time
}
