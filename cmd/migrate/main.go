package main

import (
	"log"
	"os"

	"atlas-be/internal/model"
	"atlas-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM migration...")

	// 3. Pre-Migration: extensions and enums (GORM AutoMigrate doesn't cover these)
	log.Println("Step 1: Setting up extensions and enums...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'subscription_tier') THEN CREATE TYPE subscription_tier AS ENUM ('free', 'core', 'studio'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'subscription_status') THEN CREATE TYPE subscription_status AS ENUM ('active', 'past_due', 'canceled', 'deactivated'); END IF; END $$;`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'profile_status') THEN CREATE TYPE profile_status AS ENUM ('pending', 'active', 'suspended', 'deleted'); END IF; END $$;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate all models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.Profile{},
		&model.ProfileProvider{},
		&model.Conversation{},
		&model.Message{},
		&model.Subscription{},
		&model.WebhookLog{},
		&model.RetryLog{},
		&model.EmailLog{},
		&model.Notification{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: supporting indexes the tags don't express
	log.Println("Step 3: Creating indexes...")

	postMigrationSQL := []string{
		// Webhook idempotency: one subscription row per provider identity
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_provider_external
		 ON subscriptions (provider, external_id);`,

		// History reads are always conversation + chronological order
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
		 ON messages (conversation_id, created_at);`,

		`CREATE INDEX IF NOT EXISTS idx_retry_logs_unresolved
		 ON retry_logs (created_at) WHERE resolved_at IS NULL;`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("Success: Database migration completed via GORM.")
}
