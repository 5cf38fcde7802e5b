package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/pkg/mailer"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/signature"

	"github.com/google/uuid"
)

type IMailService interface {
	// HandleMailerLite processes subscriber webhooks, syncing the
	// marketing opt-in flag on matching profiles.
	HandleMailerLite(ctx context.Context, body []byte, signatureHeader string) error
	SendWelcome(ctx context.Context, req *dto.SendWelcomeRequest) error
}

type mailService struct {
	uowFactory       unitofwork.RepositoryFactory
	emailService     mailer.IEmailService
	logger           logger.ILogger
	mailerLiteSecret string
}

func NewMailService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, log logger.ILogger, mailerLiteSecret string) IMailService {
	return &mailService{
		uowFactory:       uowFactory,
		emailService:     emailService,
		logger:           log,
		mailerLiteSecret: mailerLiteSecret,
	}
}

func (s *mailService) HandleMailerLite(ctx context.Context, body []byte, signatureHeader string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if !signature.VerifyMailerLite(s.mailerLiteSecret, body, signatureHeader) {
		s.writeWebhookLog(ctx, uow, "", false, entity.WebhookStatusRejected, body, "signature mismatch")
		return ErrInvalidSignature
	}

	var payload dto.MailerLiteWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		s.writeWebhookLog(ctx, uow, "", true, entity.WebhookStatusFailed, body, err.Error())
		return fmt.Errorf("malformed payload: %w", err)
	}

	email := payload.Data.Subscriber.Email
	switch payload.Type {
	case "subscriber.created", "subscriber.updated":
		if err := uow.UserRepository().SetMarketingOptIn(ctx, email, true); err != nil {
			s.writeWebhookLog(ctx, uow, payload.Type, true, entity.WebhookStatusFailed, body, err.Error())
			return err
		}
	case "subscriber.unsubscribed":
		if err := uow.UserRepository().SetMarketingOptIn(ctx, email, false); err != nil {
			s.writeWebhookLog(ctx, uow, payload.Type, true, entity.WebhookStatusFailed, body, err.Error())
			return err
		}
	default:
		s.writeWebhookLog(ctx, uow, payload.Type, true, entity.WebhookStatusSkipped, body, "")
		return nil
	}

	s.writeWebhookLog(ctx, uow, payload.Type, true, entity.WebhookStatusProcessed, body, "")
	return nil
}

func (s *mailService) SendWelcome(ctx context.Context, req *dto.SendWelcomeRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	emailLog := &entity.EmailLog{
		Id:        uuid.New(),
		Recipient: req.Email,
		Template:  "welcome",
		Status:    entity.EmailStatusSent,
		CreatedAt: time.Now(),
	}

	sendErr := s.emailService.SendWelcome(req.Email, req.Name)
	if sendErr != nil {
		emailLog.Status = entity.EmailStatusFailed
		emailLog.Error = sendErr.Error()
	}

	if err := uow.AuditRepository().CreateEmailLog(ctx, emailLog); err != nil {
		s.logger.Error("MailService", "Failed to write email log", map[string]interface{}{
			"recipient": req.Email,
			"error":     err.Error(),
		})
	}

	return sendErr
}

func (s *mailService) writeWebhookLog(ctx context.Context, uow unitofwork.UnitOfWork, eventType string, signatureValid bool, status entity.WebhookStatus, body []byte, errMsg string) {
	log := &entity.WebhookLog{
		Id:             uuid.New(),
		Provider:       "mailerlite",
		EventType:      eventType,
		SignatureValid: signatureValid,
		Status:         status,
		Payload:        body,
		Error:          errMsg,
		CreatedAt:      time.Now(),
	}
	if err := uow.AuditRepository().CreateWebhookLog(ctx, log); err != nil {
		s.logger.Error("MailService", "Failed to write webhook log", map[string]interface{}{"error": err.Error()})
	}
}
