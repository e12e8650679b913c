package models

import "time"

// APIToken backs an issued bearer JWT; deleting the row revokes the token.
type APIToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    uint64    `gorm:"not null;index"`                 // Token owner.
	TokenID   string    `gorm:"type:text;not null;uniqueIndex"` // JWT jti.
	ExpiresAt time.Time `gorm:"not null;index"`                 // Expiry mirrored from the JWT.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Issue timestamp.
}

// PasswordResetToken is a single-use token emailed by the forgot-password flow.
type PasswordResetToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    uint64    `gorm:"not null;index"`                 // Token owner.
	Token     string    `gorm:"type:text;not null;uniqueIndex"` // Opaque token sent by email.
	ExpiresAt time.Time `gorm:"not null;index"`                 // Expiry derived from the configured TTL.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Issue timestamp.
}
