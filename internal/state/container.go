package state

import (
	"sync"
	"time"

	"github.com/mobilefit/companion/internal/domain"
)

// FilterType narrows workout lists in the client UI
type FilterType string

const (
	FilterAll       FilterType = "all"
	FilterCompleted FilterType = "completed"
	FilterPending   FilterType = "pending"
)

// Snapshot is an immutable copy of the container's fields. It is also the
// shape persisted by the Gateway, so every field must stay JSON-serializable.
type Snapshot struct {
	SelectedWorkout   *domain.Workout `json:"selectedWorkout,omitempty"`
	SelectedDate      string          `json:"selectedDate"`
	CompletedWorkouts []string        `json:"completedWorkouts"`
	FilterType        FilterType      `json:"filterType"`
}

// Container is the single writable source for UI session state. All
// transitions are synchronous and total; subscribers are notified after each
// committed transition with a snapshot of the new state.
type Container struct {
	mu sync.Mutex

	selectedWorkout   *domain.Workout
	selectedDate      string
	completedWorkouts []string
	filterType        FilterType

	// commitMu serializes snapshot+notification so subscribers observe
	// snapshots in chronological order even when transitions race.
	commitMu    sync.Mutex
	subscribers []func(Snapshot)
}

// NewContainer creates a container with default state: today's date, no
// selection, empty completed set, filter "all".
func NewContainer() *Container {
	return &Container{
		selectedDate: time.Now().Format("2006-01-02"),
		filterType:   FilterAll,
	}
}

// Subscribe registers fn to be called after every committed transition.
// Subscribers run synchronously in transition order.
func (c *Container) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Snapshot returns a copy of the current state
func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() Snapshot {
	completed := make([]string, len(c.completedWorkouts))
	copy(completed, c.completedWorkouts)
	return Snapshot{
		SelectedWorkout:   c.selectedWorkout,
		SelectedDate:      c.selectedDate,
		CompletedWorkouts: completed,
		FilterType:        c.filterType,
	}
}

// commit snapshots state and notifies subscribers. The commit lock is held
// across both steps: without it a slow subscriber could deliver a stale
// snapshot after a newer one, leaving the persistence gateway with the older
// blob as the last durable write. The state lock is never held while
// subscribers run.
func (c *Container) commit() {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.Lock()
	snap := c.snapshotLocked()
	subs := c.subscribers
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// SelectWorkout replaces the selected workout; nil clears the selection.
func (c *Container) SelectWorkout(w *domain.Workout) {
	c.mu.Lock()
	c.selectedWorkout = w
	c.mu.Unlock()
	c.commit()
}

// SetSelectedDate replaces the selected date. No format validation happens
// here; the date string is validated upstream by the workout form.
func (c *Container) SetSelectedDate(date string) {
	c.mu.Lock()
	c.selectedDate = date
	c.mu.Unlock()
	c.commit()
}

// MarkCompleted adds id to the completed set. Repeated calls with the same
// id never accumulate duplicates.
func (c *Container) MarkCompleted(id string) {
	c.mu.Lock()
	found := false
	for _, existing := range c.completedWorkouts {
		if existing == id {
			found = true
			break
		}
	}
	if !found {
		c.completedWorkouts = append(c.completedWorkouts, id)
	}
	c.mu.Unlock()
	c.commit()
}

// MarkNotCompleted removes id from the completed set. Removing an absent id
// is a no-op, not an error.
func (c *Container) MarkNotCompleted(id string) {
	c.mu.Lock()
	kept := c.completedWorkouts[:0]
	for _, existing := range c.completedWorkouts {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	c.completedWorkouts = kept
	c.mu.Unlock()
	c.commit()
}

// SetFilterType replaces the active list filter
func (c *Container) SetFilterType(ft FilterType) {
	c.mu.Lock()
	c.filterType = ft
	c.mu.Unlock()
	c.commit()
}

// IsCompleted reports whether id is in the completed set
func (c *Container) IsCompleted(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.completedWorkouts {
		if existing == id {
			return true
		}
	}
	return false
}

// hydrate replaces the container's fields wholesale without notifying
// subscribers. Used by the Gateway before the container is opened for use.
func (c *Container) hydrate(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedWorkout = snap.SelectedWorkout
	if snap.SelectedDate != "" {
		c.selectedDate = snap.SelectedDate
	}
	c.completedWorkouts = append([]string(nil), snap.CompletedWorkouts...)
	if snap.FilterType != "" {
		c.filterType = snap.FilterType
	}
}
