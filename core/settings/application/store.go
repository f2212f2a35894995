package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/AzielCF/az-settings/pkg/activitylog"
	"github.com/sirupsen/logrus"
)

// Clock supplies wall-clock time to the store.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ActivityRecorder receives one event per store mutation.
type ActivityRecorder interface {
	Record(e activitylog.Event)
}

type Option func(*SettingsStore)

func WithClock(c Clock) Option {
	return func(s *SettingsStore) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithStorageKey(key string) Option {
	return func(s *SettingsStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithApplicationInfo(info domain.ApplicationInfo) Option {
	return func(s *SettingsStore) { s.appInfo = &info }
}

// WithPersistTimeout bounds every storage call. Zero leaves only the caller's
// context in charge.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *SettingsStore) { s.persistTimeout = d }
}

func WithActivityRecorder(r ActivityRecorder) Option {
	return func(s *SettingsStore) { s.recorder = r }
}

// SettingsStore owns the settings state. Every mutation persists the record
// (when it changes settings) and then notifies subscribers with a snapshot.
// Storage failures are logged; the in-memory state always wins.
type SettingsStore struct {
	mu    sync.Mutex
	state domain.StoreState

	repo           domain.ISettingsRepository
	clock          Clock
	key            string
	appInfo        *domain.ApplicationInfo
	persistTimeout time.Duration
	recorder       ActivityRecorder
	lastSavedAt    time.Time

	listeners listenerRegistry
}

var _ domain.ISettingsStore = (*SettingsStore)(nil)

// NewSettingsStore builds a store and loads the persisted record from repo.
// A nil repo keeps the state in memory only.
func NewSettingsStore(ctx context.Context, repo domain.ISettingsRepository, opts ...Option) *SettingsStore {
	s := &SettingsStore{
		repo:  repo,
		clock: systemClock{},
		key:   domain.StorageKey,
	}
	for _, opt := range opts {
		opt(s)
	}

	info := domain.DefaultApplicationInfo(s.clock.Now())
	if s.appInfo != nil {
		info = *s.appInfo
	}
	s.state = domain.StoreState{
		Settings: domain.Defaults(),
		AppInfo:  info,
	}
	s.load(ctx)
	return s
}

func (s *SettingsStore) load(ctx context.Context) {
	if s.repo == nil {
		return
	}
	ctx, cancel := s.storageContext(ctx)
	defer cancel()

	if err := s.repo.InitSchema(ctx); err != nil {
		logrus.Errorf("[SETTINGS] failed to init storage: %v", err)
		s.record(activitylog.Event{Kind: activitylog.KindLoad, Status: activitylog.StatusError, Error: err.Error()})
		return
	}
	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		logrus.Errorf("[SETTINGS] failed to load %s, using defaults: %v", s.key, err)
		s.record(activitylog.Event{Kind: activitylog.KindLoad, Status: activitylog.StatusError, Error: err.Error()})
		return
	}
	if raw == "" {
		logrus.Debugf("[SETTINGS] no stored record under %s, using defaults", s.key)
		return
	}

	merged, ts, issues, err := domain.DecodeRecord(raw, domain.Defaults())
	if err != nil {
		logrus.Warnf("[SETTINGS] discarding unreadable record %s: %v", s.key, err)
		s.record(activitylog.Event{Kind: activitylog.KindLoad, Status: activitylog.StatusError, Error: err.Error()})
		return
	}
	for _, issue := range issues {
		logrus.Warnf("[SETTINGS] stored value ignored: %v", issue)
	}
	s.state.Settings = merged
	if ts > 0 {
		s.lastSavedAt = time.UnixMilli(ts)
	}
	s.record(activitylog.Event{Kind: activitylog.KindLoad})
}

func (s *SettingsStore) GetState() domain.StoreState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SettingsStore) GetSettings() domain.Setting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

func (s *SettingsStore) GetApplicationInfo() domain.ApplicationInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AppInfo
}

// UpdateField applies a single typed update. Invalid values leave the state
// untouched and nothing is notified.
func (s *SettingsStore) UpdateField(ctx context.Context, update domain.Update) error {
	return s.UpdateFields(ctx, update)
}

// UpdateFields applies all updates atomically with one persist and one
// notification.
func (s *SettingsStore) UpdateFields(ctx context.Context, updates ...domain.Update) error {
	fields := fieldNames(updates)
	err := s.mutate(ctx, func(st *domain.StoreState) (bool, error) {
		next, err := domain.ApplyAll(st.Settings, updates...)
		if err != nil {
			return false, err
		}
		st.Settings = next
		return true, nil
	}, activitylog.Event{Kind: activitylog.KindUpdate, Fields: fields})
	if err != nil {
		logrus.Warnf("[SETTINGS] update rejected: %v", err)
	}
	return err
}

func (s *SettingsStore) ResetToDefaults(ctx context.Context) {
	_ = s.mutate(ctx, func(st *domain.StoreState) (bool, error) {
		st.Settings = domain.Defaults()
		return true, nil
	}, activitylog.Event{Kind: activitylog.KindReset})
	logrus.Info("[SETTINGS] settings reset to defaults")
}

func (s *SettingsStore) OpenPanel() {
	s.setPanel(true)
}

func (s *SettingsStore) ClosePanel() {
	s.setPanel(false)
}

func (s *SettingsStore) setPanel(open bool) {
	_ = s.mutate(context.Background(), func(st *domain.StoreState) (bool, error) {
		st.IsPanelOpen = open
		return false, nil
	}, activitylog.Event{Kind: activitylog.KindPanel})
}

func (s *SettingsStore) Subscribe(listener domain.Listener) domain.Unsubscribe {
	if listener == nil {
		return func() {}
	}
	return s.listeners.add(&listenerEntry{state: listener})
}

// OnDeveloperModeUnlocked registers for the completed-gesture event, which is
// delivered after the regular state notification of the same click.
func (s *SettingsStore) OnDeveloperModeUnlocked(listener domain.UnlockListener) domain.Unsubscribe {
	if listener == nil {
		return func() {}
	}
	return s.listeners.add(&listenerEntry{unlock: listener})
}

func (s *SettingsStore) ExportSnapshot() (string, error) {
	s.mu.Lock()
	snapshot := domain.Snapshot{
		Settings:   s.state.Settings,
		AppInfo:    s.state.AppInfo,
		ExportDate: domain.FormatExportDate(s.clock.Now()),
	}
	s.mu.Unlock()
	return domain.EncodeSnapshot(snapshot)
}

// ImportSnapshot merges the settings of an export document over the defaults
// and replaces the current settings. It reports false, leaving the state as
// it was, when text is not an export document.
func (s *SettingsStore) ImportSnapshot(ctx context.Context, text string) bool {
	merged, issues, err := domain.DecodeSnapshot(text, domain.Defaults())
	if err != nil {
		logrus.Warnf("[SETTINGS] import failed: %v", err)
		s.record(activitylog.Event{Kind: activitylog.KindImport, Status: activitylog.StatusRejected, Error: err.Error()})
		return false
	}
	for _, issue := range issues {
		logrus.Warnf("[SETTINGS] imported value ignored: %v", issue)
	}
	_ = s.mutate(ctx, func(st *domain.StoreState) (bool, error) {
		st.Settings = merged
		return true, nil
	}, activitylog.Event{Kind: activitylog.KindImport})
	return true
}

func (s *SettingsStore) ExportFileName() string {
	return domain.ExportFileName(s.clock.Now())
}

// Summary is the compact versioned form of the current settings.
func (s *SettingsStore) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Summary{
		Version:    s.state.AppInfo.Version,
		Settings:   s.state.Settings,
		ExportDate: domain.FormatExportDate(s.clock.Now()),
	}
}

// RegisterUnlockClick advances the hidden developer gesture. Only a completed
// gesture touches storage.
func (s *SettingsStore) RegisterUnlockClick(ctx context.Context) {
	unlocked := false
	snapshot, _ := s.mutateSnapshot(ctx, func(st *domain.StoreState) (bool, error) {
		next, effect := domain.AdvanceUnlock(st.Unlock(), s.clock.Now().UnixMilli())
		st.UnlockClickCount = next.Count
		st.LastUnlockClickTimestamp = next.LastClickTimestamp
		if effect != domain.UnlockEffectUnlocked {
			return false, nil
		}
		settings, err := domain.ApplyAll(st.Settings, domain.DeveloperUnlockUpdates()...)
		if err != nil {
			return false, err
		}
		st.Settings = settings
		unlocked = true
		return true, nil
	}, nil)

	if !unlocked {
		return
	}
	logrus.Infof("[SETTINGS] %s", domain.UnlockMessage)
	s.record(activitylog.Event{Kind: activitylog.KindUnlock, Revision: snapshot.Revision})
	s.listeners.dispatchUnlock(domain.UnlockEvent{
		Message:    domain.UnlockMessage,
		State:      snapshot,
		OccurredAt: s.clock.Now(),
	})
}

func (s *SettingsStore) GetUnlockProgress() domain.UnlockProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Unlock().Progress()
}

func (s *SettingsStore) IsDeveloperModeUnlocked() bool {
	return s.GetSettings().IsDeveloperModeUnlocked()
}

func (s *SettingsStore) Volumes() domain.Volumes {
	return s.GetSettings().Volumes()
}

// LastSavedAt is the time of the last successful persist, zero if none.
func (s *SettingsStore) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// ListenerCount is the number of registered state and unlock listeners.
func (s *SettingsStore) ListenerCount() int {
	return s.listeners.count()
}

// Storage exposes the backing repository, nil for memory-only stores.
func (s *SettingsStore) Storage() domain.ISettingsRepository {
	return s.repo
}

func (s *SettingsStore) mutate(ctx context.Context, fn func(*domain.StoreState) (bool, error), event activitylog.Event) error {
	_, err := s.mutateSnapshot(ctx, fn, &event)
	return err
}

// mutateSnapshot runs fn on a copy of the state under the lock, persists when
// fn asks for it, and notifies listeners after the lock is released.
func (s *SettingsStore) mutateSnapshot(ctx context.Context, fn func(*domain.StoreState) (bool, error), event *activitylog.Event) (domain.StoreState, error) {
	s.mu.Lock()
	next := s.state
	persist, err := fn(&next)
	if err != nil {
		s.mu.Unlock()
		if event != nil {
			event.Status = activitylog.StatusRejected
			event.Error = err.Error()
			s.record(*event)
		}
		return domain.StoreState{}, err
	}
	next.Revision++
	s.state = next
	if persist {
		s.persistLocked(ctx)
	}
	snapshot := s.state
	s.mu.Unlock()

	if event != nil {
		event.Revision = snapshot.Revision
		s.record(*event)
	}
	s.listeners.dispatch(snapshot)
	return snapshot, nil
}

func (s *SettingsStore) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	now := s.clock.Now()
	raw, err := domain.EncodeRecord(s.state.Settings, now.UnixMilli())
	if err == nil {
		ctx, cancel := s.storageContext(ctx)
		err = s.repo.Set(ctx, s.key, raw)
		cancel()
	}
	if err != nil {
		logrus.Errorf("[SETTINGS] failed to persist %s: %v", s.key, err)
		s.record(activitylog.Event{Kind: activitylog.KindPersist, Status: activitylog.StatusError, Error: err.Error(), Revision: s.state.Revision})
		return
	}
	s.lastSavedAt = now
}

func (s *SettingsStore) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.persistTimeout > 0 {
		return context.WithTimeout(ctx, s.persistTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *SettingsStore) record(e activitylog.Event) {
	if s.recorder == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock.Now().UTC()
	}
	s.recorder.Record(e)
}

func fieldNames(updates []domain.Update) []string {
	names := make([]string, 0, len(updates))
	for _, u := range updates {
		names = append(names, string(u.Field()))
	}
	return names
}

// IsValidationError reports whether err came from a rejected field value.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidValue) || errors.Is(err, domain.ErrUnknownField)
}
