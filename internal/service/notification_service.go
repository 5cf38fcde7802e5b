package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"
	"atlas-be/pkg/events"
	pktNats "atlas-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(profileID uuid.UUID, notification entity.Notification)
	Broadcast(notification entity.Notification)
}

// notificationRule maps an event code to the notification it produces.
type notificationRule struct {
	Title     string
	Template  string // {key} placeholders come from the event payload
	Broadcast bool
	Persist   bool
}

var notificationRules = map[string]notificationRule{
	events.TypeMessageCreated: {
		Title:    "New reply",
		Template: "Atlas replied in your conversation.",
		Persist:  false, // the chat view already shows it
	},
	events.TypeSubscriptionChanged: {
		Title:    "Subscription updated",
		Template: "Your plan is now {tier} ({status}).",
		Persist:  true,
	},
	events.TypePaymentFailed: {
		Title:    "Payment problem",
		Template: "We could not process your latest payment. Please update your billing details.",
		Persist:  true,
	},
	events.TypeEscalationRaised: {
		Title:     "Conversation escalated",
		Template:  "A conversation was flagged for human follow-up.",
		Broadcast: true,
		Persist:   false,
	},
}

type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// The NATS subject carries an "events." prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	rule, ok := notificationRules[typeCode]
	if !ok {
		return nil
	}

	notif := s.buildNotification(typeCode, rule, event)

	if rule.Broadcast {
		if s.delivery != nil {
			s.delivery.Broadcast(notif)
		}
		return nil
	}

	profileIdStr, _ := event.Payload()["profile_id"].(string)
	profileId, err := uuid.Parse(profileIdStr)
	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s has no usable profile_id", typeCode), nil)
		return nil
	}
	notif.ProfileId = profileId

	if rule.Persist {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.NotificationRepository().Create(ctx, &notif); err != nil {
			s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{"error": err})
			return err // NATS will retry
		}
	}

	if s.delivery != nil {
		s.delivery.Send(profileId, notif)
	}
	return nil
}

// GetNotifications lists the newest notifications for one profile.
func (s *NotificationService) GetNotifications(ctx context.Context, profileId uuid.UUID, limit, offset int) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().FindAll(ctx,
		specification.Filter("profile_id", profileId),
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
}

// MarkRead flags one of the profile's notifications as seen. Ids that
// belong to another profile are left untouched.
func (s *NotificationService) MarkRead(ctx context.Context, profileId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkRead(ctx, id, profileId)
}

func (s *NotificationService) buildNotification(typeCode string, rule notificationRule, event events.Event) entity.Notification {
	msg := rule.Template
	payload := event.Payload()

	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}

	metadata := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		metadata[k] = v
	}

	return entity.Notification{
		Id:        uuid.New(),
		TypeCode:  typeCode,
		Title:     rule.Title,
		Message:   msg,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}
