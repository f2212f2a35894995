package config

// Set at link time, e.g.
//
//	go build -ldflags "-X github.com/AzielCF/az-settings/config.Version=15.2 -X github.com/AzielCF/az-settings/config.BuildNumber=1520"
var (
	Version     = ""
	BuildNumber = ""
	BuildDate   = ""
)
