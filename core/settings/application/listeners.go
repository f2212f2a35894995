package application

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type listenerEntry struct {
	id      uuid.UUID
	state   domain.Listener
	unlock  domain.UnlockListener
	removed atomic.Bool
}

// listenerRegistry keeps listeners in registration order. Dispatch iterates a
// copy, so listeners may subscribe or unsubscribe while being notified.
type listenerRegistry struct {
	mu      sync.Mutex
	entries []*listenerEntry
}

func (r *listenerRegistry) add(e *listenerEntry) domain.Unsubscribe {
	e.id = uuid.New()
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(e.id) })
	}
}

func (r *listenerRegistry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			e.removed.Store(true)
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) snapshot() []*listenerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*listenerEntry(nil), r.entries...)
}

func (r *listenerRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *listenerRegistry) dispatch(state domain.StoreState) {
	for _, e := range r.snapshot() {
		if e.state == nil || e.removed.Load() {
			continue
		}
		invoke(e.id, func() { e.state(state) })
	}
}

func (r *listenerRegistry) dispatchUnlock(event domain.UnlockEvent) {
	for _, e := range r.snapshot() {
		if e.unlock == nil || e.removed.Load() {
			continue
		}
		invoke(e.id, func() { e.unlock(event) })
	}
}

// invoke isolates a panicking listener from the store and the other listeners.
func invoke(id uuid.UUID, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[SETTINGS] listener %s panicked: %v\n%s", id, r, debug.Stack())
		}
	}()
	fn()
}
