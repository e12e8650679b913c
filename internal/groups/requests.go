package groups

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/playerfinder/playerfinder/internal/apperr"
	dbutil "github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRequest records userID's request to join groupID.
func (s *Service) CreateRequest(ctx context.Context, groupID, userID uint64) (*models.GroupRequest, error) {
	conn := s.db.WithContext(ctx)

	var group models.Group
	if errFind := conn.Select("id").First(&group, groupID).Error; errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, fmt.Errorf("find group: %w", errFind)
	}

	var existing int64
	errCount := conn.Model(&models.GroupRequest{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&existing).Error
	if errCount != nil {
		return nil, fmt.Errorf("check group request: %w", errCount)
	}
	if existing > 0 {
		return nil, apperr.Conflict("group request already exists")
	}

	member, errMember := isMember(conn, groupID, userID)
	if errMember != nil {
		return nil, errMember
	}
	if member {
		return nil, apperr.Unprocessable("user is already in the group")
	}

	now := s.now()
	request := models.GroupRequest{
		GroupID:   groupID,
		UserID:    userID,
		Status:    models.GroupRequestPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Omit(clause.Associations).Create(&request).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			return nil, apperr.Conflict("group request already exists").Wrap(errCreate)
		}
		return nil, fmt.Errorf("create group request: %w", errCreate)
	}
	return &request, nil
}

// ListPendingRequests returns pending requests for groups mastered by the user id in master.
// A missing or non-numeric filter matches nothing.
func (s *Service) ListPendingRequests(ctx context.Context, master string) ([]models.GroupRequest, error) {
	requests := make([]models.GroupRequest, 0)
	masterID, errParse := strconv.ParseUint(strings.TrimSpace(master), 10, 64)
	if errParse != nil {
		return requests, nil
	}

	conn := s.db.WithContext(ctx)
	errFind := conn.
		Preload("Group").
		Preload("User").
		Where("group_id IN (?)", conn.Model(&models.Group{}).Select("id").Where("master = ?", masterID)).
		Where("status = ?", models.GroupRequestPending).
		Order("id ASC").
		Find(&requests).Error
	if errFind != nil {
		return nil, fmt.Errorf("list group requests: %w", errFind)
	}
	return requests, nil
}

// AcceptRequest flips a pending request to accepted and seats the requester, atomically.
func (s *Service) AcceptRequest(ctx context.Context, actorID, groupID, requestID uint64) (*models.GroupRequest, error) {
	var request models.GroupRequest
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, errLoad := s.loadOwned(tx, actorID, groupID, "accept requests"); errLoad != nil {
			return errLoad
		}
		if errFind := findRequest(tx, groupID, requestID, &request); errFind != nil {
			return errFind
		}

		now := s.now()
		res := tx.Model(&models.GroupRequest{}).
			Where("id = ? AND group_id = ? AND status = ?", requestID, groupID, models.GroupRequestPending).
			Updates(map[string]any{"status": models.GroupRequestAccepted, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("accept group request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("group request already accepted")
		}

		player := models.GroupPlayer{
			GroupID:   groupID,
			UserID:    request.UserID,
			Role:      models.RolePlayer,
			CreatedAt: now,
		}
		if errJoin := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&player).Error; errJoin != nil {
			return fmt.Errorf("add group player: %w", errJoin)
		}

		return tx.Preload("Group").Preload("User").First(&request, requestID).Error
	})
	if errTx != nil {
		return nil, errTx
	}
	return &request, nil
}

// RejectRequest deletes a pending request. Accepted requests cannot be rejected.
func (s *Service) RejectRequest(ctx context.Context, actorID, groupID, requestID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, errLoad := s.loadOwned(tx, actorID, groupID, "reject requests"); errLoad != nil {
			return errLoad
		}
		var request models.GroupRequest
		if errFind := findRequest(tx, groupID, requestID, &request); errFind != nil {
			return errFind
		}

		res := tx.Where("id = ? AND group_id = ? AND status = ?", requestID, groupID, models.GroupRequestPending).
			Delete(&models.GroupRequest{})
		if res.Error != nil {
			return fmt.Errorf("delete group request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("group request already accepted")
		}
		return nil
	})
}

func findRequest(tx *gorm.DB, groupID, requestID uint64, dest *models.GroupRequest) error {
	errFind := tx.Where("id = ? AND group_id = ?", requestID, groupID).First(dest).Error
	if errFind != nil {
		if dbutil.IsNotFound(errFind) {
			return apperr.NotFound("group request not found")
		}
		return fmt.Errorf("find group request: %w", errFind)
	}
	return nil
}
