package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/mailer"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/events"
	pktNats "atlas-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetProfile(ctx context.Context, profileId uuid.UUID) (*dto.ProfileDTO, error)
	UpdateProfile(ctx context.Context, profileId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileDTO, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	mailService    IMailService
	eventPublisher *pktNats.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, mailService IMailService, eventPublisher *pktNats.Publisher) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		emailService:   emailService,
		mailService:    mailService,
		eventPublisher: eventPublisher,
	}
}

func GenerateAccessToken(profileId uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": profileId.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, _ := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if existing != nil {
		return nil, errors.New("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	profile := &entity.Profile{
		Id:               uuid.New(),
		Email:            req.Email,
		FullName:         req.FullName,
		PasswordHash:     &hashStr,
		Role:             entity.UserRoleUser,
		Status:           entity.UserStatusActive,
		SubscriptionTier: entity.TierFree,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, profile); err != nil {
		return nil, err
	}

	// Welcome email goes out in the background, registration never waits on SMTP.
	go func() {
		if emailErr := s.mailService.SendWelcome(context.Background(), &dto.SendWelcomeRequest{Email: profile.Email, Name: profile.FullName}); emailErr != nil {
			fmt.Printf("Error sending welcome email: %v\n", emailErr)
		}
	}()

	return &dto.RegisterResponse{Id: profile.Id, Email: profile.Email}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.PasswordHash == nil {
		return nil, errors.New("invalid email or password")
	}
	if profile.Status != entity.UserStatusActive {
		return nil, errors.New("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := GenerateAccessToken(profile.Id)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		Profile:     toProfileDTO(profile),
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, profileId uuid.UUID) (*dto.ProfileDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: profileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile not found")
	}

	res := toProfileDTO(profile)
	return &res, nil
}

func (s *authService) UpdateProfile(ctx context.Context, profileId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.ProfileDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: profileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile not found")
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.MarketingOptIn != nil {
		profile.MarketingOptIn = *req.MarketingOptIn
	}
	profile.UpdatedAt = time.Now()

	if err := uow.UserRepository().Update(ctx, profile); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil && req.MarketingOptIn != nil {
		event := events.BaseEvent{
			Type: "PROFILE_UPDATED",
			Data: map[string]interface{}{
				"profile_id":       profile.Id.String(),
				"marketing_opt_in": profile.MarketingOptIn,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("Failed to publish profile update event: %v\n", err)
		}
	}

	res := toProfileDTO(profile)
	return &res, nil
}

func toProfileDTO(profile *entity.Profile) dto.ProfileDTO {
	return dto.ProfileDTO{
		Id:               profile.Id,
		Email:            profile.Email,
		FullName:         profile.FullName,
		SubscriptionTier: string(profile.SubscriptionTier),
		MarketingOptIn:   profile.MarketingOptIn,
	}
}
