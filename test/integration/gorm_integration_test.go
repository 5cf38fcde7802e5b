package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"atlas-be/internal/entity"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"
	"atlas-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SubscriptionRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Profile count: %d", count)
	})

	t.Run("Check Audit Repository", func(t *testing.T) {
		count, err := uow.AuditRepository().CountWebhookLogs(context.Background())
		assert.NoError(t, err)
		t.Logf("Webhook log count: %d", count)
	})

	t.Run("Subscription Upsert Is Idempotent", func(t *testing.T) {
		ctx := context.Background()

		profile := &entity.Profile{
			Id:       uuid.New(),
			Email:    "test-integration-" + uuid.New().String() + "@example.com",
			FullName: "Integration Test User",
			Role:     entity.UserRoleUser,
			Status:   entity.UserStatusActive,
		}
		err := uow.UserRepository().Create(ctx, profile)
		assert.NoError(t, err)

		externalId := "sub-" + uuid.New().String()
		sub := &entity.Subscription{
			Id:               uuid.New(),
			ProfileId:        profile.Id,
			Provider:         entity.ProviderFastSpring,
			ExternalId:       externalId,
			Tier:             entity.TierCore,
			Status:           entity.SubscriptionStatusActive,
			CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
		}

		// Apply the same provider subscription twice, as a replayed
		// webhook would.
		err = uow.SubscriptionRepository().Upsert(ctx, sub)
		assert.NoError(t, err)

		replay := *sub
		replay.Id = uuid.New()
		replay.Tier = entity.TierStudio
		err = uow.SubscriptionRepository().Upsert(ctx, &replay)
		assert.NoError(t, err)

		rows, err := uow.SubscriptionRepository().FindAll(ctx,
			specification.ByExternalId{Provider: string(entity.ProviderFastSpring), ExternalId: externalId},
		)
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		if len(rows) == 1 {
			assert.Equal(t, entity.TierStudio, rows[0].Tier)
		}
	})
}
