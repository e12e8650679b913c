// Package passwords implements the forgot/reset password flow.
package passwords

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/playerfinder/playerfinder/internal/apperr"
	dbutil "github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/mail"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/security"
	"github.com/playerfinder/playerfinder/internal/settings"
	"github.com/playerfinder/playerfinder/internal/users"
	"github.com/playerfinder/playerfinder/internal/validate"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// sendTimeout bounds a single background email delivery.
const sendTimeout = 30 * time.Second

// Mailer sends the password reset email.
type Mailer interface {
	SendPasswordReset(ctx context.Context, msg mail.PasswordReset) error
}

// Service manages password reset tokens.
type Service struct {
	db     *gorm.DB
	users  *users.Service
	mailer Mailer
	ttl    time.Duration
	now    func() time.Time
}

// NewService constructs a Service. A non-positive ttl falls back to the default.
func NewService(db *gorm.DB, mailer Mailer, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = settings.DefaultPasswordResetTTL
	}
	return &Service{
		db:     db,
		users:  users.NewService(db),
		mailer: mailer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Forgot issues a fresh reset token for the user and emails the link in the background.
func (s *Service) Forgot(ctx context.Context, email, resetPasswordURL string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	resetPasswordURL = strings.TrimSpace(resetPasswordURL)

	var check validate.Checker
	check.Check("email", email, validate.Email)
	check.Check("resetPasswordUrl", resetPasswordURL, validate.URL)
	if errCheck := check.Err(); errCheck != nil {
		return errCheck
	}
	base, errURL := url.Parse(resetPasswordURL)
	if errURL != nil {
		return fmt.Errorf("parse reset url: %w", errURL)
	}

	user, errFind := s.users.FindByEmail(ctx, email)
	if errFind != nil {
		return errFind
	}

	now := s.now()
	token := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     security.NewResetToken(),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errDelete := tx.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{}).Error; errDelete != nil {
			return errDelete
		}
		return tx.Create(&token).Error
	})
	if errTx != nil {
		return fmt.Errorf("issue reset token: %w", errTx)
	}

	query := base.Query()
	query.Set("token", token.Token)
	base.RawQuery = query.Encode()
	msg := mail.PasswordReset{
		To:       user.Email,
		Username: user.Username,
		ResetURL: base.String(),
		ValidFor: s.ttl,
	}
	go s.dispatch(msg)
	return nil
}

func (s *Service) dispatch(msg mail.PasswordReset) {
	if s.mailer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if errSend := s.mailer.SendPasswordReset(ctx, msg); errSend != nil {
		log.WithError(errSend).WithField("to", msg.To).Warn("passwords: send reset email failed")
	}
}

// Reset sets a new password using a reset token and revokes the user's sessions.
func (s *Service) Reset(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	var check validate.Checker
	check.Check("token", token, validate.Required)
	check.Check("password", password, validate.Password)
	if errCheck := check.Err(); errCheck != nil {
		return errCheck
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash password: %w", errHash)
	}

	now := s.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PasswordResetToken
		if errFind := tx.Where("token = ?", token).First(&row).Error; errFind != nil {
			if dbutil.IsNotFound(errFind) {
				return apperr.NotFound("token not found")
			}
			return fmt.Errorf("find reset token: %w", errFind)
		}
		if !row.ExpiresAt.After(now) {
			return apperr.Gone("token has expired")
		}

		res := tx.Model(&models.User{}).Where("id = ?", row.UserID).Updates(map[string]any{
			"password":   hash,
			"updated_at": now,
		})
		if res.Error != nil {
			return fmt.Errorf("update password: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("user not found")
		}
		if errDelete := tx.Delete(&row).Error; errDelete != nil {
			return fmt.Errorf("delete reset token: %w", errDelete)
		}
		if errRevoke := tx.Where("user_id = ?", row.UserID).Delete(&models.APIToken{}).Error; errRevoke != nil {
			return fmt.Errorf("revoke api tokens: %w", errRevoke)
		}
		return nil
	})
}

// PruneExpired deletes reset tokens whose expiry has passed.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune reset tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
