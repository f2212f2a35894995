package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// PersistedRecord is the value stored under StorageKey.
type PersistedRecord struct {
	Settings  Setting `json:"settings"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
}

// Snapshot is the user-facing export document.
type Snapshot struct {
	Settings   Setting         `json:"settings"`
	AppInfo    ApplicationInfo `json:"appInfo"`
	ExportDate string          `json:"exportDate"`
}

// Summary is the compact versioned export used by save-game tooling.
type Summary struct {
	Version    string  `json:"version"`
	Settings   Setting `json:"settings"`
	ExportDate string  `json:"exportDate"`
}

const exportFilePrefix = "grand-opus-settings"

// ExportFileName is the download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("%s-%s.json", exportFilePrefix, t.UTC().Format(time.DateOnly))
}

// FormatExportDate renders t as an ISO-8601 timestamp with milliseconds.
func FormatExportDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func EncodeRecord(s Setting, timestamp int64) (string, error) {
	data, err := json.Marshal(PersistedRecord{Settings: s, Timestamp: timestamp})
	if err != nil {
		return "", fmt.Errorf("failed to marshal settings record: %w", err)
	}
	return string(data), nil
}

// DecodeRecord merges a persisted record over defaults. The timestamp is zero
// when absent or unreadable.
func DecodeRecord(raw string, defaults Setting) (Setting, int64, []error, error) {
	top, settings, err := splitEnvelope([]byte(raw))
	if err != nil {
		return defaults, 0, nil, err
	}
	merged, issues, err := MergeJSON(defaults, settings)
	if err != nil {
		return defaults, 0, nil, err
	}
	var timestamp int64
	if ts, ok := top["timestamp"]; ok {
		_ = json.Unmarshal(ts, &timestamp)
	}
	return merged, timestamp, issues, nil
}

func EncodeSnapshot(snapshot Snapshot) (string, error) {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}
	return string(data), nil
}

// DecodeSnapshot merges the settings object of an import document over
// defaults. Everything besides "settings" is ignored.
func DecodeSnapshot(text string, defaults Setting) (Setting, []error, error) {
	_, settings, err := splitEnvelope([]byte(text))
	if err != nil {
		return defaults, nil, err
	}
	return MergeJSON(defaults, settings)
}

func splitEnvelope(raw []byte) (map[string]json.RawMessage, json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	settings, ok := top["settings"]
	if !ok {
		return nil, nil, ErrNoSettings
	}
	trimmed := bytes.TrimSpace(settings)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil, ErrNoSettings
	}
	return top, trimmed, nil
}
