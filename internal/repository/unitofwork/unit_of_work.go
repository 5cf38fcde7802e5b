package unitofwork

import (
	"context"

	"atlas-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	MessageRepository() contract.MessageRepository
	SubscriptionRepository() contract.SubscriptionRepository
	AuditRepository() contract.AuditRepository
	NotificationRepository() contract.NotificationRepository
}
