package main

import (
	"os"
	"strings"

	"github.com/playerfinder/playerfinder/internal/app"
	"github.com/playerfinder/playerfinder/internal/config"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var initConfigFlags struct {
	DSN  string
	Port int
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a starter config file with a generated JWT secret",
	RunE: func(_ *cobra.Command, _ []string) error {
		configPath := config.ResolveConfigPath(os.Getenv(config.EnvConfigPath))
		if strings.TrimSpace(rootFlags.ConfigFile) != "" {
			configPath = config.ResolveConfigPath(rootFlags.ConfigFile)
		}
		if errWrite := app.WriteConfigFile(configPath, initConfigFlags.DSN, initConfigFlags.Port); errWrite != nil {
			return errWrite
		}
		log.Infof("wrote %s", configPath)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().StringVar(&initConfigFlags.DSN, "dsn", "", "database DSN (defaults to a local SQLite file)")
	initConfigCmd.Flags().IntVar(&initConfigFlags.Port, "port", 0, "listen port written to the config")
	rootCmd.AddCommand(initConfigCmd)
}
