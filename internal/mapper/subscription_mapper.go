package mapper

import (
	"atlas-be/internal/entity"
	"atlas-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                 s.Id,
		ProfileId:          s.ProfileId,
		Provider:           entity.BillingProvider(s.Provider),
		ExternalId:         s.ExternalId,
		ProductId:          s.ProductId,
		Tier:               entity.Tier(s.Tier),
		Status:             entity.SubscriptionStatus(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CanceledAt:         s.CanceledAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                 s.Id,
		ProfileId:          s.ProfileId,
		Provider:           string(s.Provider),
		ExternalId:         s.ExternalId,
		ProductId:          s.ProductId,
		Tier:               string(s.Tier),
		Status:             string(s.Status),
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CanceledAt:         s.CanceledAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}
