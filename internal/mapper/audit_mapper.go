package mapper

import (
	"encoding/json"

	"atlas-be/internal/entity"
	"atlas-be/internal/model"

	"gorm.io/datatypes"
)

type AuditMapper struct{}

func NewAuditMapper() *AuditMapper {
	return &AuditMapper{}
}

func (m *AuditMapper) WebhookLogToModel(l *entity.WebhookLog) *model.WebhookLog {
	if l == nil {
		return nil
	}
	return &model.WebhookLog{
		Id:             l.Id,
		Provider:       l.Provider,
		EventType:      l.EventType,
		ExternalId:     l.ExternalId,
		SignatureValid: l.SignatureValid,
		Status:         string(l.Status),
		Payload:        datatypes.JSON(l.Payload),
		Error:          l.Error,
		CreatedAt:      l.CreatedAt,
	}
}

func (m *AuditMapper) WebhookLogToEntity(l *model.WebhookLog) *entity.WebhookLog {
	if l == nil {
		return nil
	}
	return &entity.WebhookLog{
		Id:             l.Id,
		Provider:       l.Provider,
		EventType:      l.EventType,
		ExternalId:     l.ExternalId,
		SignatureValid: l.SignatureValid,
		Status:         entity.WebhookStatus(l.Status),
		Payload:        []byte(l.Payload),
		Error:          l.Error,
		CreatedAt:      l.CreatedAt,
	}
}

func (m *AuditMapper) RetryLogToModel(l *entity.RetryLog) *model.RetryLog {
	if l == nil {
		return nil
	}
	return &model.RetryLog{
		Id:         l.Id,
		Resource:   l.Resource,
		ResourceId: l.ResourceId,
		Attempts:   l.Attempts,
		LastError:  l.LastError,
		ResolvedAt: l.ResolvedAt,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func (m *AuditMapper) RetryLogToEntity(l *model.RetryLog) *entity.RetryLog {
	if l == nil {
		return nil
	}
	return &entity.RetryLog{
		Id:         l.Id,
		Resource:   l.Resource,
		ResourceId: l.ResourceId,
		Attempts:   l.Attempts,
		LastError:  l.LastError,
		ResolvedAt: l.ResolvedAt,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func (m *AuditMapper) EmailLogToModel(l *entity.EmailLog) *model.EmailLog {
	if l == nil {
		return nil
	}
	return &model.EmailLog{
		Id:                l.Id,
		Recipient:         l.Recipient,
		Template:          l.Template,
		Status:            string(l.Status),
		ProviderMessageId: l.ProviderMessageId,
		Error:             l.Error,
		CreatedAt:         l.CreatedAt,
	}
}

func (m *AuditMapper) EmailLogToEntity(l *model.EmailLog) *entity.EmailLog {
	if l == nil {
		return nil
	}
	return &entity.EmailLog{
		Id:                l.Id,
		Recipient:         l.Recipient,
		Template:          l.Template,
		Status:            entity.EmailStatus(l.Status),
		ProviderMessageId: l.ProviderMessageId,
		Error:             l.Error,
		CreatedAt:         l.CreatedAt,
	}
}

func (m *AuditMapper) NotificationToModel(n *entity.Notification) *model.Notification {
	if n == nil {
		return nil
	}
	meta, _ := json.Marshal(n.Metadata)
	return &model.Notification{
		Id:        n.Id,
		ProfileId: n.ProfileId,
		TypeCode:  n.TypeCode,
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  datatypes.JSON(meta),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func (m *AuditMapper) NotificationToEntity(n *model.Notification) *entity.Notification {
	if n == nil {
		return nil
	}
	var meta map[string]interface{}
	_ = json.Unmarshal(n.Metadata, &meta)
	return &entity.Notification{
		Id:        n.Id,
		ProfileId: n.ProfileId,
		TypeCode:  n.TypeCode,
		Title:     n.Title,
		Message:   n.Message,
		Metadata:  meta,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
