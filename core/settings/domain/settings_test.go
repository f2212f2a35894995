package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.NoError(t, d.Validate())

	assert.Equal(t, ThemeDark, d.Theme)
	assert.Equal(t, LanguageEnglish, d.Language)
	assert.Equal(t, 0.8, d.MasterVolume)
	assert.Equal(t, 0.6, d.MusicVolume)
	assert.Equal(t, 5, d.AutoSaveInterval)
	assert.Equal(t, DifficultyNormal, d.Difficulty)
	assert.Equal(t, 1.0, d.UIScale)
	assert.Equal(t, LogLevelError, d.LogLevel)
	assert.False(t, d.IsDeveloperModeUnlocked())
}

func TestDefaultsCoverEveryField(t *testing.T) {
	data, err := json.Marshal(Defaults())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, len(Fields()))
	for _, f := range Fields() {
		assert.Contains(t, decoded, string(f))
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	s := Defaults()
	s.UIScale = 2
	s.Theme = "neon"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uiScale")
	assert.Contains(t, err.Error(), "theme")
}

func TestKeySetClampsNumbers(t *testing.T) {
	s := Defaults()

	require.NoError(t, KeyMasterVolume.Set(1.7).ApplyTo(&s))
	assert.Equal(t, 1.0, s.MasterVolume)

	require.NoError(t, KeyMusicVolume.Set(-0.3).ApplyTo(&s))
	assert.Equal(t, 0.0, s.MusicVolume)

	require.NoError(t, KeyUIScale.Set(0.1).ApplyTo(&s))
	assert.Equal(t, UIScaleMin, s.UIScale)

	require.NoError(t, KeyAutoSaveInterval.Set(90).ApplyTo(&s))
	assert.Equal(t, AutoSaveIntervalMax, s.AutoSaveInterval)
}

func TestKeySetRejectsUnknownEnum(t *testing.T) {
	s := Defaults()
	err := KeyDifficulty.Set("legendary").ApplyTo(&s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidValue))
	assert.Equal(t, DifficultyNormal, s.Difficulty)
}

func TestZeroUpdateIsRejected(t *testing.T) {
	s := Defaults()
	err := Update{}.ApplyTo(&s)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestApplyAllIsAllOrNothing(t *testing.T) {
	s := Defaults()
	next, err := ApplyAll(s, KeyTheme.Set(ThemeLight), KeyLanguage.Set("xx"))
	require.Error(t, err)
	assert.Equal(t, s, next)

	next, err = ApplyAll(s, KeyTheme.Set(ThemeLight), KeyShowFPS.Set(true))
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next.Theme)
	assert.True(t, next.ShowFPS)
	assert.Equal(t, ThemeDark, s.Theme)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("sfxVolume")
	require.NoError(t, err)
	assert.Equal(t, FieldSFXVolume, f)
	assert.Equal(t, GroupAudio, f.Group())

	_, err = ParseField("volume")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFieldGet(t *testing.T) {
	v, err := FieldLogLevel.Get(Defaults())
	require.NoError(t, err)
	assert.Equal(t, LogLevelError, v)

	_, err = Field("nope").Get(Defaults())
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDecodePatch(t *testing.T) {
	updates, err := DecodePatch([]byte(`{"theme":"light","masterVolume":0.5}`))
	require.NoError(t, err)
	require.Len(t, updates, 2)

	next, err := ApplyAll(Defaults(), updates...)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next.Theme)
	assert.Equal(t, 0.5, next.MasterVolume)
}

func TestDecodePatchRejects(t *testing.T) {
	_, err := DecodePatch([]byte(`{"theme":"light","volume":1,"brightness":2}`))
	require.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "brightness, volume")

	_, err = DecodePatch([]byte(`{"showGrid":"yes"}`))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodePatch([]byte(`{"showGrid":null}`))
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodePatch([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestMergeJSONPartial(t *testing.T) {
	merged, issues, err := MergeJSON(Defaults(), json.RawMessage(`{"theme":"light","musicVolume":0.1,"legacy":true}`))
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, ThemeLight, merged.Theme)
	assert.Equal(t, 0.1, merged.MusicVolume)
	assert.Equal(t, 0.8, merged.MasterVolume)
}

func TestMergeJSONKeepsBaseOnBadValues(t *testing.T) {
	merged, issues, err := MergeJSON(Defaults(), json.RawMessage(`{"theme":"neon","showGrid":"yes","language":null,"uiScale":9}`))
	require.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Equal(t, ThemeDark, merged.Theme)
	assert.True(t, merged.ShowGrid)
	assert.Equal(t, LanguageEnglish, merged.Language)
	assert.Equal(t, UIScaleMax, merged.UIScale)
}

func TestMergeJSONNotAnObject(t *testing.T) {
	_, _, err := MergeJSON(Defaults(), json.RawMessage(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidValue)
}
