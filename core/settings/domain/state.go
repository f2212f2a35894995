package domain

import (
	"context"
	"time"
)

// StoreState is the unit of change notification and of snapshot reads.
type StoreState struct {
	Settings                 Setting         `json:"settings"`
	AppInfo                  ApplicationInfo `json:"appInfo"`
	IsPanelOpen              bool            `json:"isPanelOpen"`
	UnlockClickCount         int             `json:"unlockClickCount"`
	LastUnlockClickTimestamp int64           `json:"lastUnlockClickTimestamp"`
	// Revision increases by one on every notification.
	Revision uint64 `json:"revision"`
}

func (s StoreState) Unlock() UnlockState {
	return UnlockState{Count: s.UnlockClickCount, LastClickTimestamp: s.LastUnlockClickTimestamp}
}

// Listener receives the full state after every change.
type Listener func(StoreState)

// UnlockListener receives one event per completed unlock gesture.
type UnlockListener func(UnlockEvent)

type UnlockEvent struct {
	Message    string     `json:"message"`
	State      StoreState `json:"state"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// Unsubscribe removes a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// ISettingsStore is the contract the presentation surfaces depend on.
type ISettingsStore interface {
	GetState() StoreState
	GetSettings() Setting
	GetApplicationInfo() ApplicationInfo

	UpdateField(ctx context.Context, update Update) error
	UpdateFields(ctx context.Context, updates ...Update) error
	ResetToDefaults(ctx context.Context)

	OpenPanel()
	ClosePanel()

	Subscribe(listener Listener) Unsubscribe
	OnDeveloperModeUnlocked(listener UnlockListener) Unsubscribe

	ExportSnapshot() (string, error)
	ImportSnapshot(ctx context.Context, text string) bool
	ExportFileName() string
	Summary() Summary

	RegisterUnlockClick(ctx context.Context)
	GetUnlockProgress() UnlockProgress
	IsDeveloperModeUnlocked() bool

	Volumes() Volumes
	LastSavedAt() time.Time
}
