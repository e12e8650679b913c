package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playerfinder/playerfinder/internal/config"
	"github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/security"
	"github.com/playerfinder/playerfinder/internal/settings"
	"github.com/playerfinder/playerfinder/internal/users"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ConfigExists reports whether the config file exists at the path.
func ConfigExists(configPath string) bool {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false
	}
	return true
}

// configFile maps YAML fields for the generated config file.
type configFile struct {
	Port          int                    `yaml:"port"`
	DatabaseDSN   string                 `yaml:"database-dsn"`
	JWT           jwtCfg                 `yaml:"jwt"`
	PasswordReset passwordResetCfg       `yaml:"password-reset"`
	Mail          config.MailConfig      `yaml:"mail"`
	RateLimit     config.RateLimitConfig `yaml:"rate-limit"`
	Log           config.LogConfig       `yaml:"log"`
	PruneInterval string                 `yaml:"prune-interval"`
}

// jwtCfg holds JWT settings for the generated config file.
type jwtCfg struct {
	Secret string `yaml:"secret"`
	Expiry string `yaml:"expiry"`
}

type passwordResetCfg struct {
	TokenTTL string `yaml:"token-ttl"`
}

// generateJWTSecret creates a random JWT secret string.
func generateJWTSecret() string {
	secret, err := security.GenerateRandomString(32)
	if err != nil {
		return "change-me-to-a-secure-random-string"
	}
	return secret
}

// WriteConfigFile writes a starter config file with a fresh JWT secret.
// It refuses to overwrite an existing file.
func WriteConfigFile(configPath string, dsn string, port int) error {
	if ConfigExists(configPath) {
		return fmt.Errorf("config file already exists: %s", configPath)
	}
	if port <= 0 {
		port = settings.DefaultPort
	}
	if dsn == "" {
		dsn = config.BuildSQLiteDSN(settings.DefaultSQLitePath)
	}

	cfg := configFile{
		Port:        port,
		DatabaseDSN: dsn,
		JWT: jwtCfg{
			Secret: generateJWTSecret(),
			Expiry: settings.DefaultJWTExpiry.String(),
		},
		PasswordReset: passwordResetCfg{TokenTTL: settings.DefaultPasswordResetTTL.String()},
		Mail: config.MailConfig{
			SMTPPort: settings.DefaultSMTPPort,
			FromName: settings.SiteName,
			UseTLS:   true,
		},
		RateLimit: config.RateLimitConfig{
			Limit:       settings.DefaultRateLimit,
			RedisPrefix: settings.DefaultRateLimitRedisPrefix,
		},
		Log:           config.LogConfig{Level: "info"},
		PruneInterval: settings.DefaultPruneInterval.String(),
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if errMkdir := os.MkdirAll(dir, 0755); errMkdir != nil {
		return fmt.Errorf("create config dir: %w", errMkdir)
	}

	if errWrite := os.WriteFile(configPath, data, 0600); errWrite != nil {
		return fmt.Errorf("write config file: %w", errWrite)
	}

	return nil
}

// CreateUser opens the database, migrates it and registers a user.
func CreateUser(ctx context.Context, dsn string, in users.RegisterInput) (*models.User, error) {
	conn, err := openDatabase(dsn)
	if err != nil {
		return nil, err
	}
	defer closeDatabase(conn)

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, fmt.Errorf("migrate database: %w", errMigrate)
	}
	return CreateUserWithConn(ctx, conn, in)
}

// CreateUserWithConn registers a user on an open connection.
func CreateUserWithConn(ctx context.Context, conn *gorm.DB, in users.RegisterInput) (*models.User, error) {
	if conn == nil {
		return nil, fmt.Errorf("open database: nil connection")
	}
	return users.NewService(conn).Register(ctx, in)
}
