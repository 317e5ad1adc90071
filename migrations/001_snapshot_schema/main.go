package main

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/saworbit/spectra/postgres"
)

func main() {
	log.Println("🔄 Starting migration 001: snapshot schema")

	dsn := os.Getenv("SPECTRA_POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("❌ SPECTRA_POSTGRES_DSN is not set")
	}

	// Connect runs AutoMigrate, so a successful connection has already
	// applied the schema. Everything below is verification.
	db, err := postgres.Connect(dsn)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	if err := verifySchema(db); err != nil {
		log.Fatalf("❌ Verification failed: %v", err)
	}

	log.Println("✅ Migration 001 completed successfully")
}

func verifySchema(db *gorm.DB) error {
	log.Println("📊 Verifying agent_snapshots table...")

	if !db.Migrator().HasTable(&postgres.SnapshotRecord{}) {
		return fmt.Errorf("agent_snapshots table is missing")
	}
	log.Println("✅ agent_snapshots table present")

	log.Println("📊 Verifying indexes...")
	if !db.Migrator().HasIndex(&postgres.SnapshotRecord{}, "idx_snapshots_agent_ts") {
		return fmt.Errorf("index idx_snapshots_agent_ts is missing")
	}
	log.Println("✅ idx_snapshots_agent_ts present")

	var count int64
	if err := db.Model(&postgres.SnapshotRecord{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count snapshots: %w", err)
	}
	log.Printf("✅ Schema ready (%d snapshots stored)", count)

	return nil
}
