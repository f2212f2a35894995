package activitylog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Kinds of recorded settings activity.
const (
	KindUpdate       = "update"
	KindReset        = "reset"
	KindImport       = "import"
	KindUnlock       = "unlock"
	KindPanel        = "panel"
	KindPersist      = "persist"
	KindLoad         = "load"
	StatusOK         = "ok"
	StatusError      = "error"
	StatusRejected   = "rejected"
	defaultQueueSize = 200
)

type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`   // ok | error | rejected
	Fields    []string  `json:"fields"`   // optional
	Error     string    `json:"error"`    // optional
	Revision  uint64    `json:"revision"` // state revision after the event
	Source    string    `json:"source,omitempty"`
}

type Stats struct {
	TotalUpdates int64   `json:"total_updates"`
	TotalResets  int64   `json:"total_resets"`
	TotalImports int64   `json:"total_imports"`
	TotalUnlocks int64   `json:"total_unlocks"`
	TotalErrors  int64   `json:"total_errors"`
	RecentEvents []Event `json:"recent_events"`
}

// Log keeps the most recent events in a ring buffer plus running totals.
type Log struct {
	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int
	ttl      time.Duration

	totalUpdates int64
	totalResets  int64
	totalImports int64
	totalUnlocks int64
	totalErrors  int64
}

// New creates a log holding up to size events. Events older than ttl are
// hidden from GetStats; a zero ttl keeps them until overwritten.
func New(size int, ttl time.Duration) *Log {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Log{events: make([]Event, size), ttl: ttl}
}

func (l *Log) Record(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusOK
	}

	if e.Status == StatusOK {
		switch e.Kind {
		case KindUpdate:
			atomic.AddInt64(&l.totalUpdates, 1)
		case KindReset:
			atomic.AddInt64(&l.totalResets, 1)
		case KindImport:
			atomic.AddInt64(&l.totalImports, 1)
		case KindUnlock:
			atomic.AddInt64(&l.totalUnlocks, 1)
		}
	} else {
		atomic.AddInt64(&l.totalErrors, 1)
	}

	l.eventsMu.Lock()
	l.events[l.idx] = e
	l.idx = (l.idx + 1) % len(l.events)
	if l.count < len(l.events) {
		l.count++
	}
	l.eventsMu.Unlock()
}

// GetStats returns totals and the retained events, oldest first.
func (l *Log) GetStats() Stats {
	l.eventsMu.Lock()
	defer l.eventsMu.Unlock()

	res := make([]Event, 0, l.count)
	cutoff := time.Time{}
	if l.ttl > 0 {
		cutoff = time.Now().UTC().Add(-l.ttl)
	}
	start := (l.idx - l.count) % len(l.events)
	if start < 0 {
		start += len(l.events)
	}
	for i := 0; i < l.count; i++ {
		e := l.events[(start+i)%len(l.events)]
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		e.Fields = append([]string(nil), e.Fields...)
		res = append(res, e)
	}

	return Stats{
		TotalUpdates: atomic.LoadInt64(&l.totalUpdates),
		TotalResets:  atomic.LoadInt64(&l.totalResets),
		TotalImports: atomic.LoadInt64(&l.totalImports),
		TotalUnlocks: atomic.LoadInt64(&l.totalUnlocks),
		TotalErrors:  atomic.LoadInt64(&l.totalErrors),
		RecentEvents: res,
	}
}
