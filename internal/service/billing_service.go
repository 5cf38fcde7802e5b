package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/pkg/mailer"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/events"
	pktNats "atlas-be/pkg/nats"
	"atlas-be/pkg/signature"

	"github.com/google/uuid"
)

// ErrInvalidSignature marks a webhook delivery that failed
// verification. The only state it may leave behind is an audit row.
var ErrInvalidSignature = errors.New("invalid webhook signature")

type IBillingService interface {
	HandleFastSpring(ctx context.Context, body []byte, signatureHeader string) error
	HandlePaddle(ctx context.Context, body []byte, signatureHeader string) error

	// RunBillingCycle downgrades subscriptions whose paid period plus
	// grace window has lapsed.
	RunBillingCycle(ctx context.Context) (*dto.BillingCycleResponse, error)

	GetSubscription(ctx context.Context, profileId uuid.UUID) (*dto.SubscriptionResponse, error)
}

type billingService struct {
	uowFactory       unitofwork.RepositoryFactory
	emailService     mailer.IEmailService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
	fastSpringSecret string
	paddleSecret     string
	graceDays        int
}

func NewBillingService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	fastSpringSecret, paddleSecret string,
	graceDays int,
) IBillingService {
	return &billingService{
		uowFactory:       uowFactory,
		emailService:     emailService,
		eventPublisher:   eventPublisher,
		logger:           log,
		fastSpringSecret: fastSpringSecret,
		paddleSecret:     paddleSecret,
		graceDays:        graceDays,
	}
}

// mapProductToTier resolves a store product to the tier it grants.
// Unknown products grant nothing rather than guessing.
func mapProductToTier(product string) (entity.Tier, bool) {
	p := strings.ToLower(product)
	switch {
	case strings.Contains(p, "studio"):
		return entity.TierStudio, true
	case strings.Contains(p, "core"):
		return entity.TierCore, true
	default:
		return entity.TierFree, false
	}
}

func (s *billingService) HandleFastSpring(ctx context.Context, body []byte, signatureHeader string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if !signature.VerifyFastSpring(s.fastSpringSecret, body, signatureHeader) {
		s.logWebhook(ctx, uow, "fastspring", "", "", false, entity.WebhookStatusRejected, body, "signature mismatch")
		return ErrInvalidSignature
	}

	var payload dto.FastSpringWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logWebhook(ctx, uow, "fastspring", "", "", true, entity.WebhookStatusFailed, body, err.Error())
		return fmt.Errorf("malformed payload: %w", err)
	}

	for _, event := range payload.Events {
		if err := s.processFastSpringEvent(ctx, uow, body, &event); err != nil {
			s.logWebhook(ctx, uow, "fastspring", event.Type, event.Data.Id, true, entity.WebhookStatusFailed, body, err.Error())
			return err
		}
	}
	return nil
}

func (s *billingService) processFastSpringEvent(ctx context.Context, uow unitofwork.UnitOfWork, body []byte, event *dto.FastSpringEvent) error {
	tier, known := mapProductToTier(event.Data.Product)

	switch event.Type {
	case "subscription.activated", "subscription.updated":
		if !known {
			s.logWebhook(ctx, uow, "fastspring", event.Type, event.Data.Id, true, entity.WebhookStatusSkipped, body, "unknown product "+event.Data.Product)
			return nil
		}
		profile, err := s.resolveProfile(ctx, uow, event.Data.Tags.ProfileId, event.Data.Account.Contact.Email)
		if err != nil {
			return err
		}
		if profile == nil {
			s.logWebhook(ctx, uow, "fastspring", event.Type, event.Data.Id, true, entity.WebhookStatusSkipped, body, "no matching profile")
			return nil
		}

		periodEnd := parseFastSpringDate(event.Data.NextPeriodDate)
		return s.applySubscription(ctx, uow, body, &entity.Subscription{
			ProfileId:        profile.Id,
			Provider:         entity.ProviderFastSpring,
			ExternalId:       event.Data.Id,
			ProductId:        event.Data.Product,
			Tier:             tier,
			Status:           entity.SubscriptionStatusActive,
			CurrentPeriodEnd: periodEnd,
		}, profile, event.Type, tier)

	case "subscription.canceled", "subscription.deactivated":
		return s.deactivate(ctx, uow, body, entity.ProviderFastSpring, event.Data.Id, event.Type)

	case "subscription.charge.failed":
		return s.flagPastDue(ctx, uow, body, entity.ProviderFastSpring, event.Data.Id, event.Type)

	default:
		s.logWebhook(ctx, uow, "fastspring", event.Type, event.Data.Id, true, entity.WebhookStatusSkipped, body, "")
		return nil
	}
}

func (s *billingService) HandlePaddle(ctx context.Context, body []byte, signatureHeader string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := signature.VerifyPaddle(s.paddleSecret, body, signatureHeader, time.Now(), signature.DefaultPaddleTolerance); err != nil {
		s.logWebhook(ctx, uow, "paddle", "", "", false, entity.WebhookStatusRejected, body, err.Error())
		return ErrInvalidSignature
	}

	var payload dto.PaddleWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		s.logWebhook(ctx, uow, "paddle", "", "", true, entity.WebhookStatusFailed, body, err.Error())
		return fmt.Errorf("malformed payload: %w", err)
	}

	switch payload.EventType {
	case "subscription.created", "subscription.activated", "subscription.updated":
		product := ""
		if len(payload.Data.Items) > 0 {
			product = payload.Data.Items[0].Price.Name
			if product == "" {
				product = payload.Data.Items[0].Price.ProductId
			}
		}
		tier, known := mapProductToTier(product)
		if !known {
			s.logWebhook(ctx, uow, "paddle", payload.EventType, payload.Data.Id, true, entity.WebhookStatusSkipped, body, "unknown product "+product)
			return nil
		}

		profile, err := s.resolveProfile(ctx, uow, payload.Data.CustomData.ProfileId, payload.Data.CustomData.Email)
		if err != nil {
			return err
		}
		if profile == nil {
			s.logWebhook(ctx, uow, "paddle", payload.EventType, payload.Data.Id, true, entity.WebhookStatusSkipped, body, "no matching profile")
			return nil
		}

		return s.applySubscription(ctx, uow, body, &entity.Subscription{
			ProfileId:        profile.Id,
			Provider:         entity.ProviderPaddle,
			ExternalId:       payload.Data.Id,
			ProductId:        product,
			Tier:             tier,
			Status:           entity.SubscriptionStatusActive,
			CurrentPeriodEnd: payload.Data.CurrentBillingPeriod.EndsAt,
		}, profile, payload.EventType, tier)

	case "subscription.canceled":
		return s.deactivate(ctx, uow, body, entity.ProviderPaddle, payload.Data.Id, payload.EventType)

	case "subscription.past_due", "transaction.payment_failed":
		return s.flagPastDue(ctx, uow, body, entity.ProviderPaddle, payload.Data.Id, payload.EventType)

	default:
		s.logWebhook(ctx, uow, "paddle", payload.EventType, payload.Data.Id, true, entity.WebhookStatusSkipped, body, "")
		return nil
	}
}

// applySubscription upserts the provider row and lifts the profile to
// the granted tier. Replayed webhooks land on the same row.
func (s *billingService) applySubscription(ctx context.Context, uow unitofwork.UnitOfWork, body []byte, sub *entity.Subscription, profile *entity.Profile, eventType string, tier entity.Tier) error {
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if sub.CurrentPeriodStart.IsZero() {
		sub.CurrentPeriodStart = now
	}
	if sub.CurrentPeriodEnd.IsZero() {
		sub.CurrentPeriodEnd = now.AddDate(0, 1, 0)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().Upsert(ctx, sub); err != nil {
		return err
	}
	if err := uow.UserRepository().UpdateTier(ctx, profile.Id, tier); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logWebhook(ctx, uow, string(sub.Provider), eventType, sub.ExternalId, true, entity.WebhookStatusProcessed, body, "")
	s.publishSubscriptionChanged(ctx, profile.Id, sub, tier)
	return nil
}

func (s *billingService) deactivate(ctx context.Context, uow unitofwork.UnitOfWork, body []byte, provider entity.BillingProvider, externalId, eventType string) error {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByExternalId{Provider: string(provider), ExternalId: externalId})
	if err != nil {
		return err
	}
	if sub == nil {
		s.logWebhook(ctx, uow, string(provider), eventType, externalId, true, entity.WebhookStatusSkipped, body, "unknown subscription")
		return nil
	}

	now := time.Now()
	sub.Status = entity.SubscriptionStatusCanceled
	sub.CanceledAt = &now
	sub.UpdatedAt = now

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	if err := uow.UserRepository().UpdateTier(ctx, sub.ProfileId, entity.TierFree); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logWebhook(ctx, uow, string(provider), eventType, externalId, true, entity.WebhookStatusProcessed, body, "")
	s.publishSubscriptionChanged(ctx, sub.ProfileId, sub, entity.TierFree)
	return nil
}

// flagPastDue keeps the tier during the grace window but records the
// failed charge and tells the user.
func (s *billingService) flagPastDue(ctx context.Context, uow unitofwork.UnitOfWork, body []byte, provider entity.BillingProvider, externalId, eventType string) error {
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByExternalId{Provider: string(provider), ExternalId: externalId})
	if err != nil {
		return err
	}
	if sub == nil {
		s.logWebhook(ctx, uow, string(provider), eventType, externalId, true, entity.WebhookStatusSkipped, body, "unknown subscription")
		return nil
	}

	sub.Status = entity.SubscriptionStatusPastDue
	sub.UpdatedAt = time.Now()
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	s.logWebhook(ctx, uow, string(provider), eventType, externalId, true, entity.WebhookStatusProcessed, body, "")

	if s.eventPublisher != nil {
		event := events.NewPaymentFailed(sub.ProfileId.String(), string(provider), externalId)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("BillingService", "Failed to publish payment event", map[string]interface{}{"error": err.Error()})
		}
	}

	profile, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.ProfileId})
	if err == nil && profile != nil {
		go func(email string) {
			if emailErr := s.emailService.SendPaymentFailed(email); emailErr != nil {
				s.logger.Warn("BillingService", "Failed to send payment email", map[string]interface{}{"error": emailErr.Error()})
			}
		}(profile.Email)
	}
	return nil
}

func (s *billingService) RunBillingCycle(ctx context.Context) (*dto.BillingCycleResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	now := time.Now()
	candidates, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.StatusIn{Statuses: []string{
			string(entity.SubscriptionStatusActive),
			string(entity.SubscriptionStatusPastDue),
		}},
		specification.PeriodEndedBefore{Cutoff: now},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.BillingCycleResponse{Scanned: len(candidates)}
	for _, sub := range candidates {
		if sub.InGracePeriod(now, s.graceDays) {
			res.GraceActive++
			continue
		}
		if !sub.Expired(now, s.graceDays) {
			continue
		}

		sub.Status = entity.SubscriptionStatusDeactivated
		sub.UpdatedAt = now

		if err := uow.Begin(ctx); err != nil {
			return nil, err
		}
		if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.UserRepository().UpdateTier(ctx, sub.ProfileId, entity.TierFree); err != nil {
			uow.Rollback()
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}

		res.Downgraded++
		s.publishSubscriptionChanged(ctx, sub.ProfileId, sub, entity.TierFree)
		s.logger.Info("BillingService", "Subscription downgraded after grace period", map[string]interface{}{
			"subscription_id": sub.Id.String(),
			"profile_id":      sub.ProfileId.String(),
		})
	}

	return res, nil
}

func (s *billingService) GetSubscription(ctx context.Context, profileId uuid.UUID) (*dto.SubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.OwnedBy{ProfileID: profileId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.SubscriptionResponse{Tier: string(entity.TierFree), Status: "none"}, nil
	}

	periodEnd := sub.CurrentPeriodEnd
	return &dto.SubscriptionResponse{
		Provider:         string(sub.Provider),
		ExternalId:       sub.ExternalId,
		Tier:             string(sub.Tier),
		Status:           string(sub.Status),
		CurrentPeriodEnd: &periodEnd,
	}, nil
}

// --- helpers ---

func (s *billingService) resolveProfile(ctx context.Context, uow unitofwork.UnitOfWork, profileIdStr, email string) (*entity.Profile, error) {
	if profileIdStr != "" {
		if id, err := uuid.Parse(profileIdStr); err == nil {
			profile, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
			if err != nil {
				return nil, err
			}
			if profile != nil {
				return profile, nil
			}
		}
	}
	if email == "" {
		return nil, nil
	}
	return uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
}

func (s *billingService) logWebhook(ctx context.Context, uow unitofwork.UnitOfWork, provider, eventType, externalId string, signatureValid bool, status entity.WebhookStatus, body []byte, errMsg string) {
	log := &entity.WebhookLog{
		Id:             uuid.New(),
		Provider:       provider,
		EventType:      eventType,
		ExternalId:     externalId,
		SignatureValid: signatureValid,
		Status:         status,
		Payload:        body,
		Error:          errMsg,
		CreatedAt:      time.Now(),
	}
	if err := uow.AuditRepository().CreateWebhookLog(ctx, log); err != nil {
		s.logger.Error("BillingService", "Failed to write webhook log", map[string]interface{}{
			"provider": provider,
			"error":    err.Error(),
		})
	}
}

func (s *billingService) publishSubscriptionChanged(ctx context.Context, profileId uuid.UUID, sub *entity.Subscription, tier entity.Tier) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewSubscriptionChanged(profileId.String(), string(sub.Provider), sub.ExternalId, string(tier), string(sub.Status))
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("BillingService", "Failed to publish subscription event", map[string]interface{}{"error": err.Error()})
	}
}

// parseFastSpringDate accepts the date forms FastSpring emits and
// falls back to one month out when none parse.
func parseFastSpringDate(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now().AddDate(0, 1, 0)
}
