package implementation

import (
	"context"

	"atlas-be/internal/entity"
	"atlas-be/internal/mapper"
	"atlas-be/internal/model"
	"atlas-be/internal/repository/contract"
	"atlas-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewAuditRepository(db *gorm.DB) contract.AuditRepository {
	return &AuditRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *AuditRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AuditRepositoryImpl) CreateWebhookLog(ctx context.Context, log *entity.WebhookLog) error {
	m := r.mapper.WebhookLogToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.WebhookLogToEntity(m)
	return nil
}

func (r *AuditRepositoryImpl) FindWebhookLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookLog, error) {
	var models []*model.WebhookLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WebhookLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.WebhookLogToEntity(m)
	}
	return entities, nil
}

func (r *AuditRepositoryImpl) CountWebhookLogs(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WebhookLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AuditRepositoryImpl) CreateRetryLog(ctx context.Context, log *entity.RetryLog) error {
	m := r.mapper.RetryLogToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.RetryLogToEntity(m)
	return nil
}

func (r *AuditRepositoryImpl) UpdateRetryLog(ctx context.Context, log *entity.RetryLog) error {
	m := r.mapper.RetryLogToModel(log)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.RetryLogToEntity(m)
	return nil
}

func (r *AuditRepositoryImpl) FindRetryLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.RetryLog, error) {
	var models []*model.RetryLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.RetryLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.RetryLogToEntity(m)
	}
	return entities, nil
}

func (r *AuditRepositoryImpl) CountRetryLogs(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.RetryLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AuditRepositoryImpl) CreateEmailLog(ctx context.Context, log *entity.EmailLog) error {
	m := r.mapper.EmailLogToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.EmailLogToEntity(m)
	return nil
}

func (r *AuditRepositoryImpl) FindEmailLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailLog, error) {
	var models []*model.EmailLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.EmailLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EmailLogToEntity(m)
	}
	return entities, nil
}

type NotificationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AuditMapper
}

func NewNotificationRepository(db *gorm.DB) contract.NotificationRepository {
	return &NotificationRepositoryImpl{
		db:     db,
		mapper: mapper.NewAuditMapper(),
	}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *entity.Notification) error {
	m := r.mapper.NotificationToModel(notification)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*notification = *r.mapper.NotificationToEntity(m)
	return nil
}

func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id uuid.UUID, profileId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND profile_id = ?", id, profileId).
		Update("is_read", true).Error
}

func (r *NotificationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	var models []*model.Notification
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Notification, len(models))
	for i, m := range models {
		entities[i] = r.mapper.NotificationToEntity(m)
	}
	return entities, nil
}
