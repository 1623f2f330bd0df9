package db

import (
	"fmt"
	"log"

	"go_auction/internal/audit"

	"gorm.io/gorm"
)

// Migrate runs database migrations for app-owned tables. The auction,
// item, bid and member tables belong to the external schema and are
// never migrated here; their shape is discovered at runtime instead.
func Migrate(db *gorm.DB) error {
	log.Println("Starting database migration...")

	models := []interface{}{
		&audit.Event{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("✓ Database migration completed successfully (%d tables)", len(models))
	return nil
}
