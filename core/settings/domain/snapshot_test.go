package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 10, 0, 0, time.UTC)
	assert.Equal(t, "grand-opus-settings-2024-03-09.json", ExportFileName(ts))
}

func TestFormatExportDate(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 10, 5, 120_000_000, time.UTC)
	assert.Equal(t, "2024-03-09T23:10:05.120Z", FormatExportDate(ts))
}

func TestRecordRoundTrip(t *testing.T) {
	s := Defaults()
	s.Theme = ThemeAuto
	s.ShowFPS = true

	raw, err := EncodeRecord(s, 1234)
	require.NoError(t, err)

	decoded, ts, issues, err := DecodeRecord(raw, Defaults())
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, int64(1234), ts)
	assert.Equal(t, s, decoded)
}

func TestDecodeRecordMissingSettings(t *testing.T) {
	_, _, _, err := DecodeRecord(`{"timestamp":1}`, Defaults())
	assert.ErrorIs(t, err, ErrNoSettings)

	_, _, _, err = DecodeRecord(`{"settings":"dark"}`, Defaults())
	assert.ErrorIs(t, err, ErrNoSettings)

	_, _, _, err = DecodeRecord(`{{`, Defaults())
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := Defaults()
	s.Difficulty = DifficultyNightmare
	text, err := EncodeSnapshot(Snapshot{
		Settings:   s,
		AppInfo:    DefaultApplicationInfo(time.Now()),
		ExportDate: FormatExportDate(time.Now()),
	})
	require.NoError(t, err)
	assert.Contains(t, text, "\n  \"settings\"")

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(text), &doc))
	assert.Contains(t, doc, "appInfo")
	assert.Contains(t, doc, "exportDate")

	decoded, issues, err := DecodeSnapshot(text, Defaults())
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, s, decoded)
}

func TestDecodeSnapshotPartial(t *testing.T) {
	decoded, _, err := DecodeSnapshot(`{"settings":{"showMinimap":false}}`, Defaults())
	require.NoError(t, err)
	assert.False(t, decoded.ShowMinimap)
	assert.Equal(t, Defaults().Theme, decoded.Theme)
}

func TestDecodeSnapshotRejects(t *testing.T) {
	_, _, err := DecodeSnapshot("not json", Defaults())
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, _, err = DecodeSnapshot(`{"appInfo":{}}`, Defaults())
	assert.ErrorIs(t, err, ErrNoSettings)

	_, _, err = DecodeSnapshot(`null`, Defaults())
	assert.ErrorIs(t, err, ErrNoSettings)
}
