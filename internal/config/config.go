package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/playerfinder/playerfinder/internal/settings"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvLogLevel     = "LOG_LEVEL"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvPort         = "PORT"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// MailConfig holds SMTP settings for outgoing email.
type MailConfig struct {
	Enabled            bool   `yaml:"enabled"`
	SMTPHost           string `yaml:"smtp-host"`
	SMTPPort           int    `yaml:"smtp-port"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password"`
	FromEmail          string `yaml:"from-email"`
	FromName           string `yaml:"from-name"`
	UseTLS             bool   `yaml:"use-tls"`
	UseSSL             bool   `yaml:"use-ssl"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify"`
}

// PasswordResetConfig controls the forgot-password flow.
type PasswordResetConfig struct {
	TokenTTL time.Duration `yaml:"token-ttl"`
}

// RateLimitConfig controls throttling of unauthenticated auth routes.
type RateLimitConfig struct {
	Limit         int    `yaml:"limit"`
	RedisEnabled  bool   `yaml:"redis-enabled"`
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// LogConfig controls log level and optional rotated file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// Config is the fully resolved server configuration.
type Config struct {
	Port          int
	DatabaseDSN   string
	JWT           JWTConfig
	Mail          MailConfig
	PasswordReset PasswordResetConfig
	RateLimit     RateLimitConfig
	Log           LogConfig
	PruneInterval time.Duration
}

// fileConfig maps the YAML layout of config.yaml.
type fileConfig struct {
	Port        int    `yaml:"port"`
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Mail          MailConfig          `yaml:"mail"`
	PasswordReset PasswordResetConfig `yaml:"password-reset"`
	RateLimit     RateLimitConfig     `yaml:"rate-limit"`
	Log           LogConfig           `yaml:"log"`
	PruneInterval time.Duration       `yaml:"prune-interval"`
}

// readFileConfig parses the YAML config. A missing file yields an empty config.
func readFileConfig(configPath string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return cfg, nil
}

// Load reads the config file, applies environment overrides and fills defaults.
func Load(configPath string) (Config, error) {
	file, err := readFileConfig(configPath)
	if err != nil {
		return Config{}, err
	}

	dsn, err := LoadDatabaseDSN(configPath)
	if err != nil {
		return Config{}, err
	}
	jwtCfg, err := LoadJWTConfig(configPath)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:          file.Port,
		DatabaseDSN:   dsn,
		JWT:           jwtCfg,
		Mail:          file.Mail,
		PasswordReset: file.PasswordReset,
		RateLimit:     file.RateLimit,
		Log:           file.Log,
		PruneInterval: file.PruneInterval,
	}

	if rawPort := strings.TrimSpace(os.Getenv(EnvPort)); rawPort != "" {
		if port, errParse := strconv.Atoi(rawPort); errParse == nil {
			cfg.Port = port
		}
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.Log.Level = level
	}
	if password := os.Getenv(EnvSMTPPassword); password != "" {
		cfg.Mail.Password = password
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port <= 0 {
		cfg.Port = settings.DefaultPort
	}
	if cfg.Mail.SMTPPort <= 0 {
		cfg.Mail.SMTPPort = settings.DefaultSMTPPort
	}
	if strings.TrimSpace(cfg.Mail.FromName) == "" {
		cfg.Mail.FromName = settings.SiteName
	}
	if cfg.PasswordReset.TokenTTL <= 0 {
		cfg.PasswordReset.TokenTTL = settings.DefaultPasswordResetTTL
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = settings.DefaultPruneInterval
	}
	if cfg.RateLimit.Limit < 0 {
		cfg.RateLimit.Limit = settings.DefaultRateLimit
	}
	cfg.RateLimit.RedisAddr = strings.TrimSpace(cfg.RateLimit.RedisAddr)
	cfg.RateLimit.RedisPrefix = strings.TrimSpace(cfg.RateLimit.RedisPrefix)
	if cfg.RateLimit.RedisPrefix == "" {
		cfg.RateLimit.RedisPrefix = settings.DefaultRateLimitRedisPrefix
	}
	if cfg.RateLimit.RedisDB < 0 {
		cfg.RateLimit.RedisDB = 0
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}

// LoadDatabaseDSN reads the database DSN from the environment or the YAML config file,
// falling back to a local SQLite database.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	cfg, err := readFileConfig(configPath)
	if err != nil {
		return "", err
	}
	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return BuildSQLiteDSN(settings.DefaultSQLitePath), nil
}

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	result := JWTConfig{Expiry: settings.DefaultJWTExpiry}

	cfg, errRead := readFileConfig(configPath)
	if errRead == nil {
		result = cfg.JWT
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = settings.DefaultJWTExpiry
	}
	return result, nil
}

// BuildSQLiteDSN constructs a SQLite DSN with default parameters.
func BuildSQLiteDSN(path string) string {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = settings.DefaultSQLitePath
	}
	if !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		dsn = "file:" + dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join([]string{
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
	}, "&")
}
