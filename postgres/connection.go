// Package postgres persists agent snapshots in PostgreSQL through gorm,
// for deployments that want relational history instead of (or alongside)
// the Valkey store.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

// Connect opens the PostgreSQL connection and migrates the snapshot
// schema. Call it once at startup, before GetDB.
func Connect(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := conn.AutoMigrate(
		&SnapshotRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrating snapshot schema: %w", err)
	}

	db = conn
	return conn, nil
}

// GetDB returns the connection established by Connect, or nil when no
// database has been configured.
func GetDB() *gorm.DB {
	return db
}
