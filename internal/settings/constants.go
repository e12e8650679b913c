package settings

import "time"

// Defaults shared by config loading and the services that consume it.
const (
	// SiteName is used as the sender display name and in email subjects.
	SiteName = "Player Finder"
	// DefaultPort is the HTTP port used when neither flag nor config sets one.
	DefaultPort = 3333
	// DefaultSQLitePath is the database file used when no DSN is configured.
	DefaultSQLitePath = "playerfinder.db"
	// DefaultJWTExpiry is the lifetime of issued bearer tokens.
	DefaultJWTExpiry = 30 * 24 * time.Hour
	// DefaultPasswordResetTTL is how long a password reset token stays usable.
	DefaultPasswordResetTTL = 2 * time.Hour
	// DefaultPruneInterval controls how often expired tokens are deleted.
	DefaultPruneInterval = time.Hour
	// DefaultRateLimit is the per-second limit for throttled auth routes (0 means unlimited).
	DefaultRateLimit = 0
	// DefaultRateLimitRedisPrefix is the fallback Redis key prefix.
	DefaultRateLimitRedisPrefix = "pf:rl"
	// DefaultSMTPPort is the SMTP submission port.
	DefaultSMTPPort = 587
)
