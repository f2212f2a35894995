package domain

const (
	UnlockThreshold = 10
	// UnlockTimeoutMs is the longest gap between two clicks of one gesture.
	UnlockTimeoutMs int64 = 3000
)

const UnlockMessage = "Developer mode unlocked!"

type UnlockState struct {
	Count              int
	LastClickTimestamp int64
}

type UnlockProgress struct {
	Count     int `json:"count"`
	Remaining int `json:"remaining"`
}

// UnlockEffect is the side effect a click transition asks the store to run.
type UnlockEffect int

const (
	UnlockEffectNone UnlockEffect = iota
	UnlockEffectUnlocked
)

// AdvanceUnlock is the click-pattern transition at time now (ms). A gap
// longer than UnlockTimeoutMs restarts the gesture at one click. Reaching
// UnlockThreshold resets the count and yields UnlockEffectUnlocked.
func AdvanceUnlock(state UnlockState, now int64) (UnlockState, UnlockEffect) {
	next := state
	if now-state.LastClickTimestamp > UnlockTimeoutMs {
		next.Count = 1
	} else {
		next.Count++
	}
	next.LastClickTimestamp = now

	if next.Count >= UnlockThreshold {
		next.Count = 0
		return next, UnlockEffectUnlocked
	}
	return next, UnlockEffectNone
}

func (s UnlockState) Progress() UnlockProgress {
	return UnlockProgress{
		Count:     s.Count,
		Remaining: max(0, UnlockThreshold-s.Count),
	}
}

// DeveloperUnlockUpdates are the fields switched on by a completed gesture.
func DeveloperUnlockUpdates() []Update {
	return []Update{
		KeyShowHomeTab.Set(true),
		KeyShowAIInfo.Set(true),
		KeyDebugMode.Set(true),
	}
}
