package domain

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
	ThemeAuto  Theme = "auto"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeDark, ThemeLight, ThemeAuto:
		return true
	}
	return false
}

type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageSpanish  Language = "es"
	LanguageFrench   Language = "fr"
	LanguageGerman   Language = "de"
	LanguageJapanese Language = "ja"
)

func (l Language) IsValid() bool {
	switch l {
	case LanguageEnglish, LanguageSpanish, LanguageFrench, LanguageGerman, LanguageJapanese:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyNormal    Difficulty = "normal"
	DifficultyHard      Difficulty = "hard"
	DifficultyNightmare Difficulty = "nightmare"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyNightmare:
		return true
	}
	return false
}

type LogLevel string

const (
	LogLevelNone  LogLevel = "none"
	LogLevelError LogLevel = "error"
	LogLevelWarn  LogLevel = "warn"
	LogLevelInfo  LogLevel = "info"
	LogLevelDebug LogLevel = "debug"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelNone, LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug:
		return true
	}
	return false
}

// Declared ranges for the numeric fields.
const (
	VolumeMin = 0.0
	VolumeMax = 1.0

	UIScaleMin = 0.8
	UIScaleMax = 1.5

	AutoSaveIntervalMin = 1
	AutoSaveIntervalMax = 30
)

// Setting is the full user-facing configuration record. It only holds value
// types, so a plain assignment is an independent copy.
type Setting struct {
	// Display
	Theme          Theme    `json:"theme"`
	Language       Language `json:"language"`
	ShowAnimations bool     `json:"showAnimations"`
	ShowTutorials  bool     `json:"showTutorials"`

	// Audio
	MasterVolume float64 `json:"masterVolume"`
	MusicVolume  float64 `json:"musicVolume"`
	SFXVolume    float64 `json:"sfxVolume"`
	VoiceVolume  float64 `json:"voiceVolume"`
	MuteAll      bool    `json:"muteAll"`

	// Gameplay
	AutoSave          bool       `json:"autoSave"`
	AutoSaveInterval  int        `json:"autoSaveInterval"` // minutes
	Difficulty        Difficulty `json:"difficulty"`
	ShowDamageNumbers bool       `json:"showDamageNumbers"`
	PauseOnFocusLoss  bool       `json:"pauseOnFocusLoss"`

	// UI
	ShowGrid       bool    `json:"showGrid"`
	ShowHealthBars bool    `json:"showHealthBars"`
	ShowMinimap    bool    `json:"showMinimap"`
	UIScale        float64 `json:"uiScale"`

	// Developer, hidden until unlocked
	ShowHomeTab bool     `json:"showHomeTab"`
	ShowAIInfo  bool     `json:"showAIInfo"`
	DebugMode   bool     `json:"debugMode"`
	ShowFPS     bool     `json:"showFPS"`
	LogLevel    LogLevel `json:"logLevel"`
}

// Defaults returns the documented default record.
func Defaults() Setting {
	return Setting{
		Theme:          ThemeDark,
		Language:       LanguageEnglish,
		ShowAnimations: true,
		ShowTutorials:  true,

		MasterVolume: 0.8,
		MusicVolume:  0.6,
		SFXVolume:    0.8,
		VoiceVolume:  0.8,
		MuteAll:      false,

		AutoSave:          true,
		AutoSaveInterval:  5,
		Difficulty:        DifficultyNormal,
		ShowDamageNumbers: true,
		PauseOnFocusLoss:  true,

		ShowGrid:       true,
		ShowHealthBars: true,
		ShowMinimap:    true,
		UIScale:        1.0,

		ShowHomeTab: false,
		ShowAIInfo:  false,
		DebugMode:   false,
		ShowFPS:     false,
		LogLevel:    LogLevelError,
	}
}

// Validate reports every field that is outside its declared domain.
func (s Setting) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Theme, validation.Required, validation.In(ThemeDark, ThemeLight, ThemeAuto)),
		validation.Field(&s.Language, validation.Required, validation.In(LanguageEnglish, LanguageSpanish, LanguageFrench, LanguageGerman, LanguageJapanese)),
		validation.Field(&s.MasterVolume, validation.Min(VolumeMin), validation.Max(VolumeMax)),
		validation.Field(&s.MusicVolume, validation.Min(VolumeMin), validation.Max(VolumeMax)),
		validation.Field(&s.SFXVolume, validation.Min(VolumeMin), validation.Max(VolumeMax)),
		validation.Field(&s.VoiceVolume, validation.Min(VolumeMin), validation.Max(VolumeMax)),
		validation.Field(&s.AutoSaveInterval, validation.Required, validation.Min(AutoSaveIntervalMin), validation.Max(AutoSaveIntervalMax)),
		validation.Field(&s.Difficulty, validation.Required, validation.In(DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyNightmare)),
		validation.Field(&s.UIScale, validation.Required, validation.Min(UIScaleMin), validation.Max(UIScaleMax)),
		validation.Field(&s.LogLevel, validation.Required, validation.In(LogLevelNone, LogLevelError, LogLevelWarn, LogLevelInfo, LogLevelDebug)),
	)
}
