// Package users implements account registration and profile updates.
package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playerfinder/playerfinder/internal/apperr"
	dbutil "github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/security"
	"github.com/playerfinder/playerfinder/internal/validate"
	"gorm.io/gorm"
)

// Service manages user accounts.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// RegisterInput holds the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Avatar   string
}

// UpdateInput holds the fields accepted on profile update.
type UpdateInput struct {
	Email    string
	Password string
	Avatar   string
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	avatar := strings.TrimSpace(in.Avatar)

	var check validate.Checker
	check.Check("email", email, validate.Email)
	check.Check("username", username, validate.Required)
	check.Check("password", in.Password, validate.Password)
	check.Check("avatar", avatar, validate.Avatar)
	if errCheck := check.Err(); errCheck != nil {
		return nil, errCheck
	}

	conn := s.db.WithContext(ctx)
	if taken, errTaken := s.fieldTaken(conn, "email", email, 0); errTaken != nil {
		return nil, errTaken
	} else if taken {
		return nil, apperr.Conflict("email already in use")
	}
	if taken, errTaken := s.fieldTaken(conn, "username", username, 0); errTaken != nil {
		return nil, errTaken
	} else if taken {
		return nil, apperr.Conflict("username already in use")
	}

	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return nil, fmt.Errorf("hash password: %w", errHash)
	}

	now := s.now()
	user := models.User{
		Email:     email,
		Username:  username,
		Password:  hash,
		Avatar:    avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			return nil, apperr.Conflict("email or username already in use").Wrap(errCreate)
		}
		return nil, fmt.Errorf("create user: %w", errCreate)
	}
	return &user, nil
}

// Update changes the email, password and avatar of the acting user.
func (s *Service) Update(ctx context.Context, actorID, userID uint64, in UpdateInput) (*models.User, error) {
	if actorID != userID {
		return nil, apperr.Forbidden("users can only update their own account")
	}

	email := normalizeEmail(in.Email)
	avatar := strings.TrimSpace(in.Avatar)
	var check validate.Checker
	check.Check("email", email, validate.Email)
	check.Check("password", in.Password, validate.Password)
	check.Check("avatar", avatar, validate.Avatar)
	if errCheck := check.Err(); errCheck != nil {
		return nil, errCheck
	}

	conn := s.db.WithContext(ctx)
	user, errGet := s.Get(ctx, userID)
	if errGet != nil {
		return nil, errGet
	}
	if taken, errTaken := s.fieldTaken(conn, "email", email, user.ID); errTaken != nil {
		return nil, errTaken
	} else if taken {
		return nil, apperr.Conflict("email already in use")
	}

	hash, errHash := security.HashPassword(in.Password)
	if errHash != nil {
		return nil, fmt.Errorf("hash password: %w", errHash)
	}

	updates := map[string]any{
		"email":      email,
		"password":   hash,
		"avatar":     avatar,
		"updated_at": s.now(),
	}
	if errUpdate := conn.Model(user).Updates(updates).Error; errUpdate != nil {
		if dbutil.IsUniqueViolation(errUpdate) {
			return nil, apperr.Conflict("email already in use").Wrap(errUpdate)
		}
		return nil, fmt.Errorf("update user: %w", errUpdate)
	}
	return s.Get(ctx, userID)
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if errFind := s.db.WithContext(ctx).First(&user, id).Error; errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", errFind)
	}
	return &user, nil
}

// FindByEmail loads a user by email address.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", errFind)
	}
	return &user, nil
}

func (s *Service) fieldTaken(conn *gorm.DB, column, value string, exceptID uint64) (bool, error) {
	var count int64
	query := conn.Model(&models.User{}).Where(column+" = ?", value)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if errCount := query.Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("check %s: %w", column, errCount)
	}
	return count > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
