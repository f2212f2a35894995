package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Field names one member of Setting by its persisted json name.
type Field string

const (
	FieldTheme             Field = "theme"
	FieldLanguage          Field = "language"
	FieldShowAnimations    Field = "showAnimations"
	FieldShowTutorials     Field = "showTutorials"
	FieldMasterVolume      Field = "masterVolume"
	FieldMusicVolume       Field = "musicVolume"
	FieldSFXVolume         Field = "sfxVolume"
	FieldVoiceVolume       Field = "voiceVolume"
	FieldMuteAll           Field = "muteAll"
	FieldAutoSave          Field = "autoSave"
	FieldAutoSaveInterval  Field = "autoSaveInterval"
	FieldDifficulty        Field = "difficulty"
	FieldShowDamageNumbers Field = "showDamageNumbers"
	FieldPauseOnFocusLoss  Field = "pauseOnFocusLoss"
	FieldShowGrid          Field = "showGrid"
	FieldShowHealthBars    Field = "showHealthBars"
	FieldShowMinimap       Field = "showMinimap"
	FieldUIScale           Field = "uiScale"
	FieldShowHomeTab       Field = "showHomeTab"
	FieldShowAIInfo        Field = "showAIInfo"
	FieldDebugMode         Field = "debugMode"
	FieldShowFPS           Field = "showFPS"
	FieldLogLevel          Field = "logLevel"
)

// Group is the conceptual section a field is rendered under.
type Group string

const (
	GroupDisplay   Group = "display"
	GroupAudio     Group = "audio"
	GroupGameplay  Group = "gameplay"
	GroupUI        Group = "ui"
	GroupDeveloper Group = "developer"
)

// Key is a typed handle on one Setting field. Updates built from a Key are
// checked by the compiler for the value type.
type Key[T comparable] struct {
	field Field
	group Group
	ref   func(*Setting) *T
	check func(T) (T, error)
}

var (
	KeyTheme          = boundKey(FieldTheme, GroupDisplay, func(s *Setting) *Theme { return &s.Theme }, enumCheck(Theme.IsValid))
	KeyLanguage       = boundKey(FieldLanguage, GroupDisplay, func(s *Setting) *Language { return &s.Language }, enumCheck(Language.IsValid))
	KeyShowAnimations = boundKey(FieldShowAnimations, GroupDisplay, func(s *Setting) *bool { return &s.ShowAnimations }, nil)
	KeyShowTutorials  = boundKey(FieldShowTutorials, GroupDisplay, func(s *Setting) *bool { return &s.ShowTutorials }, nil)

	KeyMasterVolume = boundKey(FieldMasterVolume, GroupAudio, func(s *Setting) *float64 { return &s.MasterVolume }, floatClamp(VolumeMin, VolumeMax))
	KeyMusicVolume  = boundKey(FieldMusicVolume, GroupAudio, func(s *Setting) *float64 { return &s.MusicVolume }, floatClamp(VolumeMin, VolumeMax))
	KeySFXVolume    = boundKey(FieldSFXVolume, GroupAudio, func(s *Setting) *float64 { return &s.SFXVolume }, floatClamp(VolumeMin, VolumeMax))
	KeyVoiceVolume  = boundKey(FieldVoiceVolume, GroupAudio, func(s *Setting) *float64 { return &s.VoiceVolume }, floatClamp(VolumeMin, VolumeMax))
	KeyMuteAll      = boundKey(FieldMuteAll, GroupAudio, func(s *Setting) *bool { return &s.MuteAll }, nil)

	KeyAutoSave          = boundKey(FieldAutoSave, GroupGameplay, func(s *Setting) *bool { return &s.AutoSave }, nil)
	KeyAutoSaveInterval  = boundKey(FieldAutoSaveInterval, GroupGameplay, func(s *Setting) *int { return &s.AutoSaveInterval }, intClamp(AutoSaveIntervalMin, AutoSaveIntervalMax))
	KeyDifficulty        = boundKey(FieldDifficulty, GroupGameplay, func(s *Setting) *Difficulty { return &s.Difficulty }, enumCheck(Difficulty.IsValid))
	KeyShowDamageNumbers = boundKey(FieldShowDamageNumbers, GroupGameplay, func(s *Setting) *bool { return &s.ShowDamageNumbers }, nil)
	KeyPauseOnFocusLoss  = boundKey(FieldPauseOnFocusLoss, GroupGameplay, func(s *Setting) *bool { return &s.PauseOnFocusLoss }, nil)

	KeyShowGrid       = boundKey(FieldShowGrid, GroupUI, func(s *Setting) *bool { return &s.ShowGrid }, nil)
	KeyShowHealthBars = boundKey(FieldShowHealthBars, GroupUI, func(s *Setting) *bool { return &s.ShowHealthBars }, nil)
	KeyShowMinimap    = boundKey(FieldShowMinimap, GroupUI, func(s *Setting) *bool { return &s.ShowMinimap }, nil)
	KeyUIScale        = boundKey(FieldUIScale, GroupUI, func(s *Setting) *float64 { return &s.UIScale }, floatClamp(UIScaleMin, UIScaleMax))

	KeyShowHomeTab = boundKey(FieldShowHomeTab, GroupDeveloper, func(s *Setting) *bool { return &s.ShowHomeTab }, nil)
	KeyShowAIInfo  = boundKey(FieldShowAIInfo, GroupDeveloper, func(s *Setting) *bool { return &s.ShowAIInfo }, nil)
	KeyDebugMode   = boundKey(FieldDebugMode, GroupDeveloper, func(s *Setting) *bool { return &s.DebugMode }, nil)
	KeyShowFPS     = boundKey(FieldShowFPS, GroupDeveloper, func(s *Setting) *bool { return &s.ShowFPS }, nil)
	KeyLogLevel    = boundKey(FieldLogLevel, GroupDeveloper, func(s *Setting) *LogLevel { return &s.LogLevel }, enumCheck(LogLevel.IsValid))
)

// fieldSpec is the untyped view of a Key used by string-keyed callers
// (REST, CLI, MCP) and by the tolerant decoders.
type fieldSpec struct {
	group  Group
	decode func(raw json.RawMessage) (Update, error)
	get    func(Setting) any
}

// fieldOrder is the declaration order used for listings.
var fieldOrder = []Field{
	FieldTheme, FieldLanguage, FieldShowAnimations, FieldShowTutorials,
	FieldMasterVolume, FieldMusicVolume, FieldSFXVolume, FieldVoiceVolume, FieldMuteAll,
	FieldAutoSave, FieldAutoSaveInterval, FieldDifficulty, FieldShowDamageNumbers, FieldPauseOnFocusLoss,
	FieldShowGrid, FieldShowHealthBars, FieldShowMinimap, FieldUIScale,
	FieldShowHomeTab, FieldShowAIInfo, FieldDebugMode, FieldShowFPS, FieldLogLevel,
}

var fieldSpecs = map[Field]fieldSpec{}

func boundKey[T comparable](field Field, group Group, ref func(*Setting) *T, check func(T) (T, error)) Key[T] {
	k := Key[T]{field: field, group: group, ref: ref, check: check}
	fieldSpecs[field] = fieldSpec{
		group:  group,
		decode: k.decode,
		get:    func(s Setting) any { return k.Get(s) },
	}
	return k
}

func (k Key[T]) Field() Field { return k.field }

func (k Key[T]) Group() Group { return k.group }

// Get reads the field from s.
func (k Key[T]) Get(s Setting) T {
	return *k.ref(&s)
}

// Set builds an update assigning v to the field.
func (k Key[T]) Set(v T) Update {
	return Update{
		field: k.field,
		value: v,
		apply: func(s *Setting) error {
			value := v
			if k.check != nil {
				checked, err := k.check(value)
				if err != nil {
					return fmt.Errorf("%s: %w", k.field, err)
				}
				value = checked
			}
			*k.ref(s) = value
			return nil
		},
	}
}

func (k Key[T]) decode(raw json.RawMessage) (Update, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Update{}, fmt.Errorf("%s: %w: %v", k.field, ErrInvalidValue, err)
	}
	return k.Set(v), nil
}

// Update is a single typed field assignment. The zero Update is invalid.
type Update struct {
	field Field
	value any
	apply func(*Setting) error
}

func (u Update) Field() Field { return u.field }

func (u Update) Value() any { return u.value }

// ApplyTo assigns the update to s, clamping numeric values into range and
// rejecting undeclared enum values. s is left untouched on error.
func (u Update) ApplyTo(s *Setting) error {
	if u.apply == nil {
		return ErrUnknownField
	}
	next := *s
	if err := u.apply(&next); err != nil {
		return err
	}
	*s = next
	return nil
}

// ApplyAll applies updates in order on a copy of s, all or nothing.
func ApplyAll(s Setting, updates ...Update) (Setting, error) {
	next := s
	for _, u := range updates {
		if err := u.ApplyTo(&next); err != nil {
			return s, err
		}
	}
	return next, nil
}

// Fields lists every field in declaration order.
func Fields() []Field {
	return append([]Field(nil), fieldOrder...)
}

// ParseField resolves a json field name.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := fieldSpecs[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

func (f Field) Group() Group {
	return fieldSpecs[f].group
}

// Get reads the field value from s as an untyped value.
func (f Field) Get(s Setting) (any, error) {
	entry, ok := fieldSpecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return entry.get(s), nil
}

// DecodeUpdate builds a typed update for f from a json value.
func DecodeUpdate(f Field, raw json.RawMessage) (Update, error) {
	entry, ok := fieldSpecs[f]
	if !ok {
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if isNull(raw) {
		return Update{}, fmt.Errorf("%s: %w: null", f, ErrInvalidValue)
	}
	return entry.decode(raw)
}

// DecodePatch turns a json object of field names into updates. Unknown names
// are an error; use MergeJSON for tolerant overlays.
func DecodePatch(raw []byte) ([]Update, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	updates := make([]Update, 0, len(fields))
	for _, f := range fieldOrder {
		value, ok := fields[string(f)]
		if !ok {
			continue
		}
		u, err := DecodeUpdate(f, value)
		if err != nil {
			return nil, err
		}
		updates = append(updates, u)
		delete(fields, string(f))
	}
	if len(fields) > 0 {
		unknown := make([]string, 0, len(fields))
		for name := range fields {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}
	return updates, nil
}

// MergeJSON overlays a json settings object onto base. Unknown fields and
// null values are skipped; values that fail to decode or are outside an
// enum keep the base value and are reported in issues.
func MergeJSON(base Setting, raw json.RawMessage) (Setting, []error, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return base, nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	merged := base
	var issues []error
	for _, f := range fieldOrder {
		value, ok := fields[string(f)]
		if !ok || isNull(value) {
			continue
		}
		u, err := fieldSpecs[f].decode(value)
		if err == nil {
			err = u.ApplyTo(&merged)
		}
		if err != nil {
			issues = append(issues, err)
		}
	}
	return merged, issues, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func enumCheck[T ~string](valid func(T) bool) func(T) (T, error) {
	return func(v T) (T, error) {
		if !valid(v) {
			return v, fmt.Errorf("%w: %q", ErrInvalidValue, string(v))
		}
		return v, nil
	}
}

func floatClamp(lo, hi float64) func(float64) (float64, error) {
	return func(v float64) (float64, error) {
		if math.IsNaN(v) {
			return v, fmt.Errorf("%w: NaN", ErrInvalidValue)
		}
		return math.Min(hi, math.Max(lo, v)), nil
	}
}

func intClamp(lo, hi int) func(int) (int, error) {
	return func(v int) (int, error) {
		return min(hi, max(lo, v)), nil
	}
}
