package models

import "time"

// Group is a game table run by a master with a set of players.
type Group struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null"` // Display name.
	Description string `gorm:"type:text;not null"` // Free-form description.
	Schedule    string `gorm:"type:text;not null"` // When the table meets.
	Location    string `gorm:"type:text;not null"` // Where the table meets.
	Chronic     string `gorm:"type:text;not null"` // Campaign tag.

	Master     uint64 `gorm:"not null;index"`    // Owning user ID, immutable after creation.
	MasterUser *User  `gorm:"foreignKey:Master"` // Owning user.

	Players []User `gorm:"many2many:groups_users;joinForeignKey:GroupID;joinReferences:UserID"` // Current members.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Membership roles stored on the join table.
const (
	RoleMaster = "master"
	RolePlayer = "player"
)

// GroupPlayer is one row of the group membership set.
type GroupPlayer struct {
	GroupID uint64 `gorm:"primaryKey;autoIncrement:false"`       // Group ID.
	UserID  uint64 `gorm:"primaryKey;autoIncrement:false;index"` // Member user ID.

	Role string `gorm:"type:text;not null;default:'player'"` // master or player.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Join timestamp.
}

// TableName keeps the join table name used by the Players relation.
func (GroupPlayer) TableName() string { return "groups_users" }
