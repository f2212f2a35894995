package domain

import "time"

// Volumes are the effective output levels after mute and master scaling.
type Volumes struct {
	Master float64 `json:"master"`
	Music  float64 `json:"music"`
	SFX    float64 `json:"sfx"`
	Voice  float64 `json:"voice"`
}

func (s Setting) EffectiveMasterVolume() float64 {
	if s.MuteAll {
		return 0
	}
	return s.MasterVolume
}

func (s Setting) EffectiveMusicVolume() float64 {
	return s.scaled(s.MusicVolume)
}

func (s Setting) EffectiveSFXVolume() float64 {
	return s.scaled(s.SFXVolume)
}

func (s Setting) EffectiveVoiceVolume() float64 {
	return s.scaled(s.VoiceVolume)
}

func (s Setting) scaled(category float64) float64 {
	if s.MuteAll {
		return 0
	}
	return category * s.MasterVolume
}

func (s Setting) Volumes() Volumes {
	return Volumes{
		Master: s.EffectiveMasterVolume(),
		Music:  s.EffectiveMusicVolume(),
		SFX:    s.EffectiveSFXVolume(),
		Voice:  s.EffectiveVoiceVolume(),
	}
}

// IsDeveloperModeUnlocked is true once both developer navigation fields are on.
func (s Setting) IsDeveloperModeUnlocked() bool {
	return s.ShowHomeTab && s.ShowAIInfo
}

func (s Setting) ShouldShowAnimations() bool { return s.ShowAnimations }
func (s Setting) ShouldShowTutorials() bool  { return s.ShowTutorials }
func (s Setting) ShouldAutoSave() bool       { return s.AutoSave }
func (s Setting) ShouldShowHomeTab() bool    { return s.ShowHomeTab }
func (s Setting) ShouldShowAIInfo() bool     { return s.ShowAIInfo }
func (s Setting) IsDebugMode() bool          { return s.DebugMode }

// AutoSavePeriod converts the minute based interval.
func (s Setting) AutoSavePeriod() time.Duration {
	return time.Duration(s.AutoSaveInterval) * time.Minute
}
