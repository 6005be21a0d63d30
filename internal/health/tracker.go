package health

import "sync"

// View is a read-only window onto a tracked collection.
type View interface {
	Availability() Availability
	Health() Health
	State() SystemState
}

// Tracker holds the two axes for one collection and applies transitions.
// The zero value is loading and healthy. It is safe for concurrent use.
type Tracker struct {
	mu           sync.RWMutex
	availability Availability
	health       Health
}

var _ View = (*Tracker)(nil)

func availabilityFor(count int) Availability {
	if count == 0 {
		return Empty
	}
	return Available
}

// SetLoading marks the collection as loading. Health is unchanged.
func (t *Tracker) SetLoading() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.availability = Loading
}

// OnLocalLoadSuccess records a successful local load of count records.
// A previous local error is cleared; a remote error is kept.
func (t *Tracker) OnLocalLoadSuccess(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.availability = availabilityFor(count)
	if t.health == LocalError {
		t.health = Healthy
	}
}

// OnLocalLoadFailure records a failed local read or write.
func (t *Tracker) OnLocalLoadFailure(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.health = LocalError
	t.availability = availabilityFor(count)
}

// OnRemoteSyncFailure records a failed remote fetch. A local error already
// present is more severe and is kept.
func (t *Tracker) OnRemoteSyncFailure(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.health != LocalError {
		t.health = RemoteError
	}
	t.availability = availabilityFor(count)
}

// OnSyncSuccess records a completed remote sync. Only a remote error is
// cleared; a local error persists until a later local load succeeds.
func (t *Tracker) OnSyncSuccess(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.health == RemoteError {
		t.health = Healthy
	}
	t.availability = availabilityFor(count)
}

// OnItemsChanged recomputes availability after records were added outside a
// load or sync. Health is unchanged, and a load in progress stays loading.
func (t *Tracker) OnItemsChanged(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.availability != Loading {
		t.availability = availabilityFor(count)
	}
}

// Reset returns to the empty, healthy state used after a clear.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.availability = Empty
	t.health = Healthy
}

// Availability returns the current availability.
func (t *Tracker) Availability() Availability {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.availability
}

// Health returns the current health.
func (t *Tracker) Health() Health {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.health
}

// State resolves the current axes.
func (t *Tracker) State() SystemState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Resolve(t.availability, t.health)
}
