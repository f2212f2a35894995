package domain

import "time"

// ApplicationInfo is read-only build and contact metadata shown next to the
// settings panel.
type ApplicationInfo struct {
	Version      string `json:"version"`
	BuildDate    string `json:"buildDate"`
	BuildNumber  int    `json:"buildNumber"`
	Platform     string `json:"platform"`
	Engine       string `json:"engine"`
	Author       string `json:"author"`
	Website      string `json:"website"`
	SupportEmail string `json:"supportEmail"`
}

// DefaultApplicationInfo uses now as the build date.
func DefaultApplicationInfo(now time.Time) ApplicationInfo {
	return ApplicationInfo{
		Version:      "15.1",
		BuildDate:    now.UTC().Format(time.DateOnly),
		BuildNumber:  1510,
		Platform:     "Web",
		Engine:       "Go + Fiber",
		Author:       "Grand Opus Development Team",
		Website:      "https://grandopus.game",
		SupportEmail: "support@grandopus.game",
	}
}
