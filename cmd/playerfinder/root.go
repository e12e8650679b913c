package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/playerfinder/playerfinder/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var rootFlags struct {
	ConfigFile string
	LogLevel   string
	LogFile    string
}

var rootCmd = &cobra.Command{
	Use:   "playerfinder",
	Short: "Player Finder API server",
	Long:  `Player Finder lets tabletop players register, form groups and ask to join them.`,
	Example: `playerfinder serve --config config.yaml
  playerfinder migrate -c /etc/playerfinder/config.yaml
  playerfinder create-user --email gm@example.com --username gm --password secret`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.ConfigFile, "config", "c", "", "config file path (or env CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.LogLevel, "log-level", "", "log level (debug, info, warn, error), overrides config")
	rootCmd.PersistentFlags().StringVar(&rootFlags.LogFile, "log-file", "", "also write logs to this file, rotated")
}

// loadConfig resolves the config path, loads it and applies logging settings.
func loadConfig() (config.Config, error) {
	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(rootFlags.ConfigFile) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(rootFlags.ConfigFile)
	}

	cfg, err := config.Load(appCfg.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if rootFlags.LogLevel != "" {
		cfg.Log.Level = rootFlags.LogLevel
	}
	if rootFlags.LogFile != "" {
		cfg.Log.File = rootFlags.LogFile
	}
	if errLog := setupLogging(cfg.Log); errLog != nil {
		return config.Config{}, errLog
	}
	return cfg, nil
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Level)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if strings.TrimSpace(cfg.File) == "" {
		log.SetOutput(os.Stdout)
		return nil
	}
	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotated))
	log.WithField("file", cfg.File).Debug("logging to console and file")
	return nil
}
