package contract

import (
	"context"

	"atlas-be/internal/entity"
	"atlas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	Update(ctx context.Context, profile *entity.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdateTier(ctx context.Context, id uuid.UUID, tier entity.Tier) error
	SetMarketingOptIn(ctx context.Context, email string, optIn bool) error

	CreateProvider(ctx context.Context, provider *entity.ProfileProvider) error
	FindProvider(ctx context.Context, providerName, providerUserId string) (*entity.ProfileProvider, error)
}
