package utils

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// GetServerID returns a stable identifier for this process: the override if
// given, else a sanitized hostname, else a random id.
func GetServerID(override string) string {
	if override != "" {
		return override
	}
	hostname, err := os.Hostname()
	if err == nil && hostname != "" && hostname != "localhost" {
		clean := strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}
			return -1
		}, hostname)
		if clean != "" {
			return "azset-" + clean
		}
	}
	return "azset-" + uuid.NewString()[:8]
}
