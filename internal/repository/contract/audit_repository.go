package contract

import (
	"context"

	"atlas-be/internal/entity"
	"atlas-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AuditRepository interface {
	CreateWebhookLog(ctx context.Context, log *entity.WebhookLog) error
	FindWebhookLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookLog, error)
	CountWebhookLogs(ctx context.Context, specs ...specification.Specification) (int64, error)

	CreateRetryLog(ctx context.Context, log *entity.RetryLog) error
	UpdateRetryLog(ctx context.Context, log *entity.RetryLog) error
	FindRetryLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.RetryLog, error)
	CountRetryLogs(ctx context.Context, specs ...specification.Specification) (int64, error)

	CreateEmailLog(ctx context.Context, log *entity.EmailLog) error
	FindEmailLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailLog, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	MarkRead(ctx context.Context, id uuid.UUID, profileId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error)
}
