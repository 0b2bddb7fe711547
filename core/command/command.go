// Package command applies reversible operator actions to network objects.
//
// Each Command captures the state it overwrites in a Snapshot so the
// Executor can restore it exactly once.
package command

import (
	"errors"
	"fmt"

	"github.com/kilianp07/gridmon/core/model"
	"github.com/kilianp07/gridmon/core/repository"
)

// Kind names a command variant.
type Kind string

const (
	KindSwitchStatus  Kind = "switch_status"
	KindLoadReduction Kind = "load_reduction"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidStatus  = errors.New("invalid object status")
)

// Store is the part of the repository commands mutate.
type Store = repository.ObjectStore

// Snapshot records the values a command replaced.
type Snapshot struct {
	Statuses map[string]model.ObjectStatus
	Loads    map[string]float64
}

// Empty reports whether nothing was captured.
func (s Snapshot) Empty() bool { return len(s.Statuses) == 0 && len(s.Loads) == 0 }

// Command is a reversible operator action.
type Command interface {
	Kind() Kind
	// Target is the affected object id or "network" for network wide actions.
	Target() string
	// Apply mutates the store and returns the prior state. It must not
	// mutate anything when it returns an error.
	Apply(Store) (Snapshot, error)
	Revert(Store, Snapshot) error
}

// SwitchStatus changes the operating status of one object, for example
// taking a feeder out of service.
type SwitchStatus struct {
	ObjectID  string
	NewStatus model.ObjectStatus
	Operator  string
}

func (c SwitchStatus) Kind() Kind     { return KindSwitchStatus }
func (c SwitchStatus) Target() string { return c.ObjectID }

func (c SwitchStatus) Apply(s Store) (Snapshot, error) {
	if !c.NewStatus.Valid() {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidStatus, c.NewStatus)
	}
	prev, ok := s.SetObjectStatus(c.ObjectID, c.NewStatus)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrObjectNotFound, c.ObjectID)
	}
	return Snapshot{Statuses: map[string]model.ObjectStatus{c.ObjectID: prev}}, nil
}

func (c SwitchStatus) Revert(s Store, snap Snapshot) error {
	return restore(s, snap)
}

// Default parameters of LoadReduction.
const (
	DefaultReductionThreshold = 0.8
	DefaultReductionFactor    = 0.7
)

// LoadReduction scales down every object whose load exceeds Threshold of its
// capacity. Zero fields use the defaults.
type LoadReduction struct {
	Threshold float64
	Factor    float64
	Operator  string
}

func (c LoadReduction) Kind() Kind     { return KindLoadReduction }
func (c LoadReduction) Target() string { return "network" }

func (c LoadReduction) params() (float64, float64) {
	th, f := c.Threshold, c.Factor
	if th <= 0 {
		th = DefaultReductionThreshold
	}
	if f <= 0 {
		f = DefaultReductionFactor
	}
	return th, f
}

func (c LoadReduction) Apply(s Store) (Snapshot, error) {
	th, f := c.params()
	snap := Snapshot{Loads: make(map[string]float64)}
	for _, o := range s.Objects() {
		if o.Capacity <= 0 || o.CurrentLoad <= o.Capacity*th {
			continue
		}
		if s.SetObjectLoad(o.ID, o.CurrentLoad*f) {
			snap.Loads[o.ID] = o.CurrentLoad
		}
	}
	return snap, nil
}

func (c LoadReduction) Revert(s Store, snap Snapshot) error {
	return restore(s, snap)
}

// Reduced lists the object ids a load reduction touched.
func (s Snapshot) Reduced() []string {
	ids := make([]string, 0, len(s.Loads))
	for id := range s.Loads {
		ids = append(ids, id)
	}
	return ids
}

func restore(s Store, snap Snapshot) error {
	var errs []error
	for id, st := range snap.Statuses {
		if _, ok := s.SetObjectStatus(id, st); !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrObjectNotFound, id))
		}
	}
	for id, load := range snap.Loads {
		if !s.SetObjectLoad(id, load) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrObjectNotFound, id))
		}
	}
	return errors.Join(errs...)
}
