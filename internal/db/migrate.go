package db

import (
	"fmt"

	"github.com/playerfinder/playerfinder/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errJoin := conn.SetupJoinTable(&models.Group{}, "Players", &models.GroupPlayer{}); errJoin != nil {
		return fmt.Errorf("db: setup join table: %w", errJoin)
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupPlayer{},
		&models.GroupRequest{},
		&models.APIToken{},
		&models.PasswordResetToken{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	// Pending requests are listed per master on every inbox load.
	if errIndex := conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_group_requests_pending
		ON group_requests (group_id)
		WHERE status = 'PENDING'
	`).Error; errIndex != nil {
		return fmt.Errorf("db: create pending requests index: %w", errIndex)
	}
	return nil
}

// SchemaReady reports whether every table the API depends on exists.
func SchemaReady(conn *gorm.DB) bool {
	if conn == nil {
		return false
	}
	migrator := conn.Migrator()
	for _, model := range []any{
		&models.User{},
		&models.Group{},
		&models.GroupPlayer{},
		&models.GroupRequest{},
		&models.APIToken{},
		&models.PasswordResetToken{},
	} {
		if !migrator.HasTable(model) {
			return false
		}
	}
	return true
}
