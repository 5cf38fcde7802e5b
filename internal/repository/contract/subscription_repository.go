package contract

import (
	"context"

	"atlas-be/internal/entity"
	"atlas-be/internal/repository/specification"
)

type SubscriptionRepository interface {
	// Upsert writes the subscription keyed on (provider, external_id).
	// Webhook replays hit the same row.
	Upsert(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
