package main

import (
	"log"
	"os"
	"time"

	"atlas-be/internal/model"
	"atlas-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seeds a demo profile per tier plus a sample conversation, for local
// development against a fresh database. Safe to re-run.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding Atlas development data\n")

	profiles := seedProfiles(db)
	seedConversation(db, profiles["free@atlas.dev"])

	color.Green("\nDone.")
}

func seedProfiles(db *gorm.DB) map[string]uuid.UUID {
	color.Yellow("\n1. Demo profiles (one per tier)")

	hash, _ := bcrypt.GenerateFromPassword([]byte("atlas-dev-password"), bcrypt.DefaultCost)
	pw := string(hash)

	seeds := []model.Profile{
		{Id: uuid.New(), Email: "free@atlas.dev", PasswordHash: &pw, FullName: "Freya Trial", SubscriptionTier: "free"},
		{Id: uuid.New(), Email: "core@atlas.dev", PasswordHash: &pw, FullName: "Cora Member", SubscriptionTier: "core"},
		{Id: uuid.New(), Email: "studio@atlas.dev", PasswordHash: &pw, FullName: "Stu Producer", SubscriptionTier: "studio"},
	}

	ids := make(map[string]uuid.UUID, len(seeds))
	for _, p := range seeds {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).Create(&p).Error
		if err != nil {
			color.Red("Failed to seed %s: %v", p.Email, err)
			continue
		}

		// Re-read so re-runs resolve the existing id.
		var existing model.Profile
		if err := db.Where("email = ?", p.Email).First(&existing).Error; err == nil {
			ids[p.Email] = existing.Id
		}
		color.Green("  %s (%s)", p.Email, p.SubscriptionTier)
	}
	return ids
}

func seedConversation(db *gorm.DB, profileId uuid.UUID) {
	color.Yellow("\n2. Sample conversation")
	if profileId == uuid.Nil {
		color.Red("  Skipped: seed profile missing")
		return
	}

	var count int64
	db.Model(&model.Conversation{}).Where("profile_id = ?", profileId).Count(&count)
	if count > 0 {
		color.Green("  Already present, skipping")
		return
	}

	conv := model.Conversation{
		Id:        uuid.New(),
		ProfileId: profileId,
		Title:     "Getting started",
	}
	if err := db.Create(&conv).Error; err != nil {
		color.Red("  Failed to create conversation: %v", err)
		return
	}

	now := time.Now()
	messages := []model.Message{
		{Id: uuid.New(), ConversationId: conv.Id, Role: "user", Content: "Hi Atlas, what can you do?", CreatedAt: now.Add(-2 * time.Minute)},
		{Id: uuid.New(), ConversationId: conv.Id, Role: "assistant", Content: "Hello! I can chat by text or voice, remember our conversations, and help you think things through. Ask me anything.", Model: "seed", CreatedAt: now.Add(-1 * time.Minute)},
	}
	for _, m := range messages {
		if err := db.Create(&m).Error; err != nil {
			color.Red("  Failed to create message: %v", err)
		}
	}
	color.Green("  Conversation %s with %d messages", conv.Id, len(messages))
}
