package mapper

import (
	"time"

	"atlas-be/internal/entity"
	"atlas-be/internal/model"

	"gorm.io/gorm"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ProfileToEntity(p *model.Profile) *entity.Profile {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	return &entity.Profile{
		Id:               p.Id,
		Email:            p.Email,
		PasswordHash:     p.PasswordHash,
		FullName:         p.FullName,
		Role:             entity.UserRole(p.Role),
		Status:           entity.UserStatus(p.Status),
		SubscriptionTier: entity.Tier(p.SubscriptionTier),
		AvatarURL:        p.AvatarURL,
		MarketingOptIn:   p.MarketingOptIn,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		DeletedAt:        deletedAt,
	}
}

func (m *UserMapper) ProfileToModel(p *entity.Profile) *model.Profile {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	}

	return &model.Profile{
		Id:               p.Id,
		Email:            p.Email,
		PasswordHash:     p.PasswordHash,
		FullName:         p.FullName,
		Role:             string(p.Role),
		Status:           string(p.Status),
		SubscriptionTier: string(p.SubscriptionTier),
		AvatarURL:        p.AvatarURL,
		MarketingOptIn:   p.MarketingOptIn,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		DeletedAt:        deletedAt,
	}
}

func (m *UserMapper) ProviderToEntity(p *model.ProfileProvider) *entity.ProfileProvider {
	if p == nil {
		return nil
	}
	return &entity.ProfileProvider{
		Id:             p.Id,
		ProfileId:      p.ProfileId,
		ProviderName:   p.ProviderName,
		ProviderUserId: p.ProviderUserId,
		AvatarURL:      p.AvatarURL,
		CreatedAt:      p.CreatedAt,
	}
}

func (m *UserMapper) ProviderToModel(p *entity.ProfileProvider) *model.ProfileProvider {
	if p == nil {
		return nil
	}
	return &model.ProfileProvider{
		Id:             p.Id,
		ProfileId:      p.ProfileId,
		ProviderName:   p.ProviderName,
		ProviderUserId: p.ProviderUserId,
		AvatarURL:      p.AvatarURL,
		CreatedAt:      p.CreatedAt,
	}
}
