package models

import "time"

// GroupRequestStatus is the lifecycle state of a join request.
type GroupRequestStatus string

const (
	GroupRequestPending  GroupRequestStatus = "PENDING"
	GroupRequestAccepted GroupRequestStatus = "ACCEPTED"
)

// GroupRequest records a user's request to join a group.
type GroupRequest struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	GroupID uint64 `gorm:"not null;uniqueIndex:idx_group_requests_group_user"`       // Requested group.
	Group   *Group `gorm:"foreignKey:GroupID"`                                       // Requested group.
	UserID  uint64 `gorm:"not null;uniqueIndex:idx_group_requests_group_user;index"` // Requesting user.
	User    *User  `gorm:"foreignKey:UserID"`                                        // Requesting user.

	Status GroupRequestStatus `gorm:"type:text;not null;default:'PENDING';index"` // PENDING or ACCEPTED.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
