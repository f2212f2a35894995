package cmd

import (
	"os"
	"time"

	coreconfig "github.com/AzielCF/az-settings/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-settings",
	Short: "Game settings state service",
	Long: `Serves the Grand Opus settings store: typed settings with defaults, persistence,
import/export, live change notifications and the hidden developer unlock.`,
	SilenceUsage: true,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initConfig)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml) | example: --config=./config.yaml")
	flags.BoolP("debug", "d", false, "enable debug logging --debug <true/false> | example: --debug=true")
	flags.String("log-format", "text", "log output format --log-format <text|json>")
	flags.String("backend", "", "storage backend --backend <memory|gorm|sql|valkey>")
	flags.String("db-driver", "", "database driver for gorm and sql backends --db-driver <sqlite|postgres>")
	flags.String("db-name", "", "sqlite file path or postgres database name")
	flags.String("valkey-address", "", "valkey address --valkey-address <host:port>")
	flags.String("storage-key", "", "key the settings record is stored under")

	bind := map[string]string{
		"app.debug":       "debug",
		"log.format":      "log-format",
		"storage.backend": "backend",
		"storage.key":     "storage-key",
		"database.driver": "db-driver",
		"database.name":   "db-name",
		"valkey.address":  "valkey-address",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func initConfig() {
	cfg, err := coreconfig.LoadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	if cfg.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
