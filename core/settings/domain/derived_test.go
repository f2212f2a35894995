package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveVolumes(t *testing.T) {
	s := Defaults()
	s.MasterVolume = 0.5
	s.MusicVolume = 0.4
	assert.InDelta(t, 0.2, s.EffectiveMusicVolume(), 1e-9)
	assert.InDelta(t, 0.5, s.EffectiveMasterVolume(), 1e-9)
	assert.InDelta(t, 0.4, s.EffectiveSFXVolume(), 1e-9)
	assert.InDelta(t, 0.4, s.EffectiveVoiceVolume(), 1e-9)
}

func TestEffectiveVolumesMuted(t *testing.T) {
	s := Defaults()
	s.MuteAll = true
	assert.Equal(t, Volumes{}, s.Volumes())
}

func TestDeveloperModeNeedsBothTabs(t *testing.T) {
	s := Defaults()
	s.ShowHomeTab = true
	assert.False(t, s.IsDeveloperModeUnlocked())
	s.ShowAIInfo = true
	assert.True(t, s.IsDeveloperModeUnlocked())
}

func TestAutoSavePeriod(t *testing.T) {
	s := Defaults()
	assert.Equal(t, 5*time.Minute, s.AutoSavePeriod())
}
