package main

import (
	"fmt"

	"github.com/playerfinder/playerfinder/internal/app"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			if servePort <= 0 || servePort > 65535 {
				return fmt.Errorf("invalid port: %d", servePort)
			}
			cfg.Port = servePort
		}
		return app.RunServer(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port, overrides config")
	rootCmd.AddCommand(serveCmd)
}
