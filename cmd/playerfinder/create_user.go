package main

import (
	"github.com/playerfinder/playerfinder/internal/app"
	"github.com/playerfinder/playerfinder/internal/users"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var createUserFlags users.RegisterInput

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Register a user directly in the database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		user, errCreate := app.CreateUser(cmd.Context(), cfg.DatabaseDSN, createUserFlags)
		if errCreate != nil {
			return errCreate
		}
		log.WithFields(log.Fields{"id": user.ID, "username": user.Username}).Info("user created")
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserFlags.Email, "email", "", "email address")
	createUserCmd.Flags().StringVar(&createUserFlags.Username, "username", "", "unique username")
	createUserCmd.Flags().StringVar(&createUserFlags.Password, "password", "", "plain-text password")
	createUserCmd.Flags().StringVar(&createUserFlags.Avatar, "avatar", "", "optional avatar url")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createUserCmd)
}
