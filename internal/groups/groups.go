// Package groups implements game groups, their membership set and the join request workflow.
package groups

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playerfinder/playerfinder/internal/apperr"
	dbutil "github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/playerfinder/playerfinder/internal/validate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service manages groups and group requests.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput holds the fields accepted when creating a group.
type CreateInput struct {
	Name        string
	Description string
	Schedule    string
	Location    string
	Chronic     string
	// Master, when set, must name the authenticated user.
	Master *uint64
}

// UpdateInput holds a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Schedule    *string
	Location    *string
	Chronic     *string
}

// ListFilter narrows group listings.
type ListFilter struct {
	// UserID keeps groups the user plays in.
	UserID uint64
	// Text matches name or description case-insensitively.
	Text string
}

// Create stores a group owned by masterID and seats the master as its first player.
func (s *Service) Create(ctx context.Context, masterID uint64, in CreateInput) (*models.Group, error) {
	group := models.Group{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Schedule:    strings.TrimSpace(in.Schedule),
		Location:    strings.TrimSpace(in.Location),
		Chronic:     strings.TrimSpace(in.Chronic),
		Master:      masterID,
	}

	var check validate.Checker
	check.Check("chronic", group.Chronic, validate.Required)
	check.Check("description", group.Description, validate.Required)
	check.Check("location", group.Location, validate.Required)
	check.Check("name", group.Name, validate.Required)
	check.Check("schedule", group.Schedule, validate.Required)
	if in.Master != nil && *in.Master != masterID {
		check.Add("master", "equals", "master must be the authenticated user")
	}
	if errCheck := check.Err(); errCheck != nil {
		return nil, errCheck
	}

	now := s.now()
	group.CreatedAt = now
	group.UpdatedAt = now
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Omit(clause.Associations).Create(&group).Error; errCreate != nil {
			return errCreate
		}
		return tx.Create(&models.GroupPlayer{
			GroupID:   group.ID,
			UserID:    masterID,
			Role:      models.RoleMaster,
			CreatedAt: now,
		}).Error
	})
	if errTx != nil {
		return nil, fmt.Errorf("create group: %w", errTx)
	}
	return s.Get(ctx, group.ID)
}

// Get loads a group with its master and players.
func (s *Service) Get(ctx context.Context, id uint64) (*models.Group, error) {
	var group models.Group
	errFind := withRelations(s.db.WithContext(ctx)).First(&group, id).Error
	if errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, fmt.Errorf("find group: %w", errFind)
	}
	return &group, nil
}

// List returns groups with their master and players.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Group, error) {
	conn := s.db.WithContext(ctx)
	query := withRelations(conn).Order("groups.id ASC")
	if filter.UserID != 0 {
		query = query.Where("groups.id IN (?)", conn.Model(&models.GroupPlayer{}).Select("group_id").Where("user_id = ?", filter.UserID))
	}
	if text := strings.TrimSpace(filter.Text); text != "" {
		pattern := dbutil.ContainsPattern(conn, text)
		query = query.Where(
			"("+dbutil.CaseInsensitiveLikeExpr(conn, "groups.name")+" OR "+dbutil.CaseInsensitiveLikeExpr(conn, "groups.description")+")",
			pattern, pattern,
		)
	}

	groups := make([]models.Group, 0)
	if errFind := query.Find(&groups).Error; errFind != nil {
		return nil, fmt.Errorf("list groups: %w", errFind)
	}
	return groups, nil
}

// Update changes descriptive fields of a group. Only the master may update it.
func (s *Service) Update(ctx context.Context, actorID, groupID uint64, in UpdateInput) (*models.Group, error) {
	updates := map[string]any{}
	var check validate.Checker
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"chronic", in.Chronic},
		{"description", in.Description},
		{"location", in.Location},
		{"name", in.Name},
		{"schedule", in.Schedule},
	} {
		if field.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(*field.value)
		check.Check(field.column, trimmed, validate.Required)
		updates[field.column] = trimmed
	}
	if errCheck := check.Err(); errCheck != nil {
		return nil, errCheck
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, errLoad := s.loadOwned(tx, actorID, groupID, "update")
		if errLoad != nil {
			return errLoad
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = s.now()
		if errUpdate := tx.Model(group).Updates(updates).Error; errUpdate != nil {
			return fmt.Errorf("update group: %w", errUpdate)
		}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}
	return s.Get(ctx, groupID)
}

// Delete removes a group together with its membership and request rows.
func (s *Service) Delete(ctx context.Context, actorID, groupID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, errLoad := s.loadOwned(tx, actorID, groupID, "delete")
		if errLoad != nil {
			return errLoad
		}
		if errPlayers := tx.Where("group_id = ?", group.ID).Delete(&models.GroupPlayer{}).Error; errPlayers != nil {
			return fmt.Errorf("delete group players: %w", errPlayers)
		}
		if errRequests := tx.Where("group_id = ?", group.ID).Delete(&models.GroupRequest{}).Error; errRequests != nil {
			return fmt.Errorf("delete group requests: %w", errRequests)
		}
		if errGroup := tx.Delete(&models.Group{}, group.ID).Error; errGroup != nil {
			return fmt.Errorf("delete group: %w", errGroup)
		}
		return nil
	})
}

// RemovePlayer takes userID out of the group. Removing a non-member succeeds without change.
func (s *Service) RemovePlayer(ctx context.Context, actorID, groupID, userID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, errLoad := s.loadOwned(tx, actorID, groupID, "remove players")
		if errLoad != nil {
			return errLoad
		}
		if userID == group.Master {
			return apperr.InvalidState("cannot remove the master from the group")
		}
		if errDelete := tx.Where("group_id = ? AND user_id = ?", group.ID, userID).Delete(&models.GroupPlayer{}).Error; errDelete != nil {
			return fmt.Errorf("delete group player: %w", errDelete)
		}
		if errDelete := tx.Where("group_id = ? AND user_id = ?", group.ID, userID).Delete(&models.GroupRequest{}).Error; errDelete != nil {
			return fmt.Errorf("delete group request: %w", errDelete)
		}
		return nil
	})
}

func isMember(conn *gorm.DB, groupID, userID uint64) (bool, error) {
	var count int64
	errCount := conn.Model(&models.GroupPlayer{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error
	if errCount != nil {
		return false, fmt.Errorf("check membership: %w", errCount)
	}
	return count > 0, nil
}

// loadOwned loads a group and checks that actorID is its master.
func (s *Service) loadOwned(conn *gorm.DB, actorID, groupID uint64, action string) (*models.Group, error) {
	var group models.Group
	query := conn
	if !dbutil.IsSQLite(conn) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if errFind := query.First(&group, groupID).Error; errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, fmt.Errorf("find group: %w", errFind)
	}
	if group.Master != actorID {
		return nil, apperr.Forbidden("only the group master can %s", action)
	}
	return &group, nil
}

func withRelations(conn *gorm.DB) *gorm.DB {
	return conn.Preload("MasterUser").Preload("Players", func(db *gorm.DB) *gorm.DB {
		return db.Order("users.id ASC")
	})
}
