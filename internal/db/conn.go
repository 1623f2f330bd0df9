package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	gormDB *gorm.DB
	sqlDB  *sql.DB
)

// InitMySQL opens the MySQL connection through GORM and keeps the
// underlying *sql.DB for the schema-adaptive query paths.
func InitMySQL(dsn string) error {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	raw, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	raw.SetConnMaxLifetime(time.Hour)

	if err := raw.Ping(); err != nil {
		return fmt.Errorf("failed to ping MySQL: %w", err)
	}

	gormDB = gdb
	sqlDB = raw
	log.Println("✓ MySQL connected successfully")
	return nil
}

// GetDB returns the GORM handle (app-owned tables only; the auction
// tables are reached through per-operation connections instead).
func GetDB() *gorm.DB {
	return gormDB
}

// SQL returns the shared *sql.DB pool.
func SQL() *sql.DB {
	return sqlDB
}

// Conn checks out a single connection for the lifetime of one logical
// operation. Callers must Close it on every exit path.
func Conn(ctx context.Context) (*sql.Conn, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}
	return conn, nil
}

// Close closes the database connection
func Close() error {
	if sqlDB != nil {
		return sqlDB.Close()
	}
	return nil
}
