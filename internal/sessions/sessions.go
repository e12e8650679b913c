// Package sessions issues, authenticates and revokes bearer tokens.
package sessions

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/config"
	dbutil "github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/security"
	"github.com/playerfinder/playerfinder/internal/users"
	"gorm.io/gorm"
)

// TokenType is the scheme reported to clients alongside issued tokens.
const TokenType = "bearer"

// Service manages login sessions.
type Service struct {
	db    *gorm.DB
	users *users.Service
	jwt   config.JWTConfig
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB, jwtCfg config.JWTConfig) *Service {
	return &Service{
		db:    db,
		users: users.NewService(db),
		jwt:   jwtCfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Session is the result of a successful login.
type Session struct {
	User  *models.User
	Token security.IssuedToken
}

// Principal is an authenticated caller.
type Principal struct {
	User    *models.User
	TokenID string
}

// Login verifies credentials and issues a token backed by an api_tokens row.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.BadRequest("email and password are required")
	}

	user, errFind := s.users.FindByEmail(ctx, email)
	if errFind != nil {
		if apperr.StatusOf(errFind) == http.StatusNotFound {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		return nil, errFind
	}
	if !security.CheckPassword(user.Password, password) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	now := s.now()
	issued, errIssue := security.IssueUserToken(s.jwt.Secret, user.ID, s.jwt.Expiry, now)
	if errIssue != nil {
		return nil, fmt.Errorf("issue token: %w", errIssue)
	}
	row := models.APIToken{
		UserID:    user.ID,
		TokenID:   issued.TokenID,
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("store token: %w", errCreate)
	}
	return &Session{User: user, Token: issued}, nil
}

// Logout revokes the token with the given id.
func (s *Service) Logout(ctx context.Context, tokenID string) error {
	if strings.TrimSpace(tokenID) == "" {
		return apperr.Unauthorized("missing token")
	}
	if errDelete := s.db.WithContext(ctx).Where("token_id = ?", tokenID).Delete(&models.APIToken{}).Error; errDelete != nil {
		return fmt.Errorf("revoke token: %w", errDelete)
	}
	return nil
}

// Authenticate validates a raw bearer token and loads its owner.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, apperr.Unauthorized("missing token")
	}
	claims, errParse := security.ParseUserToken(s.jwt.Secret, rawToken)
	if errParse != nil {
		return nil, apperr.Unauthorized("invalid token").Wrap(errParse)
	}

	conn := s.db.WithContext(ctx)
	var row models.APIToken
	errFind := conn.Where("token_id = ? AND user_id = ?", claims.ID, claims.UserID).First(&row).Error
	if errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return nil, apperr.Unauthorized("token revoked")
		}
		return nil, fmt.Errorf("find token: %w", errFind)
	}
	if !row.ExpiresAt.After(s.now()) {
		return nil, apperr.Unauthorized("token expired")
	}

	var user models.User
	if errUser := conn.First(&user, row.UserID).Error; errUser != nil {
		if dbutil.IsNotFound(errUser) {
			return nil, apperr.Unauthorized("user not found")
		}
		return nil, fmt.Errorf("find user: %w", errUser)
	}
	return &Principal{User: &user, TokenID: row.TokenID}, nil
}

// PruneExpired deletes api tokens whose expiry has passed.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.APIToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune api tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
