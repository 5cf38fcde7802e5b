package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/events"
	pktNats "atlas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// escalationMarkers are phrases in user messages that should surface a
// conversation to a human.
var escalationMarkers = []string{
	"talk to a human",
	"real person",
	"cancel my account",
	"delete my account",
	"this is urgent",
	"refund",
}

type IOpsService interface {
	// RetryFailedUploads enqueues every unresolved retry record onto
	// the background worker queue.
	RetryFailedUploads(ctx context.Context) (*dto.RetryUploadsResponse, error)

	AlertProxy(ctx context.Context, req *dto.AlertProxyRequest) error
	CicdAlert(ctx context.Context, req *dto.CicdAlertRequest) error

	// RunEscalationMonitor scans recent user messages for distress
	// markers and raises notifications for matches.
	RunEscalationMonitor(ctx context.Context) (*dto.EscalationResponse, error)
	RecentEscalations(ctx context.Context) ([]*entity.Notification, error)

	SocialRecent(ctx context.Context) ([]dto.SocialPostDTO, error)
}

type opsService struct {
	uowFactory      unitofwork.RepositoryFactory
	pubSub          *gochannel.GoChannel
	topicName       string
	eventPublisher  *pktNats.Publisher
	logger          logger.ILogger
	alertWebhookURL string
	httpClient      *http.Client
	socialCache     *cache.Cache
}

func NewOpsService(
	uowFactory unitofwork.RepositoryFactory,
	pubSub *gochannel.GoChannel,
	topicName string,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	alertWebhookURL string,
) IOpsService {
	return &opsService{
		uowFactory:      uowFactory,
		pubSub:          pubSub,
		topicName:       topicName,
		eventPublisher:  eventPublisher,
		logger:          log,
		alertWebhookURL: alertWebhookURL,
		httpClient:      &http.Client{Timeout: 15 * time.Second},
		socialCache:     cache.New(10*time.Minute, 10*time.Minute),
	}
}

func (s *opsService) RetryFailedUploads(ctx context.Context) (*dto.RetryUploadsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pending, err := uow.AuditRepository().FindRetryLogs(ctx,
		specification.Unresolved{},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.RetryUploadsResponse{}
	for _, retryLog := range pending {
		payload, err := json.Marshal(map[string]string{"retry_log_id": retryLog.Id.String()})
		if err != nil {
			return nil, err
		}
		msg := message.NewMessage(watermill.NewUUID(), payload)
		if err := s.pubSub.Publish(s.topicName, msg); err != nil {
			return nil, fmt.Errorf("failed to enqueue retry %s: %w", retryLog.Id, err)
		}
		res.Enqueued++
	}

	s.logger.Info("OpsService", "Retry queue loaded", map[string]interface{}{"enqueued": res.Enqueued})
	return res, nil
}

func (s *opsService) AlertProxy(ctx context.Context, req *dto.AlertProxyRequest) error {
	if s.alertWebhookURL == "" {
		return fmt.Errorf("alert webhook not configured")
	}

	// Downstream expects a Slack-style payload.
	payload, err := json.Marshal(map[string]interface{}{
		"text": fmt.Sprintf("[%s] %s: %s", strings.ToUpper(req.Severity), req.Source, req.Message),
		"details": req.Details,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.alertWebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("alert delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert delivery failed: status %d", resp.StatusCode)
	}

	s.logger.Info("OpsService", "Alert forwarded", map[string]interface{}{
		"source":   req.Source,
		"severity": req.Severity,
	})
	return nil
}

func (s *opsService) CicdAlert(ctx context.Context, req *dto.CicdAlertRequest) error {
	severity := "info"
	if req.Status == "failure" {
		severity = "critical"
	}

	details := map[string]interface{}{
		"pipeline": req.Pipeline,
		"status":   req.Status,
	}
	if req.Commit != "" {
		details["commit"] = req.Commit
	}
	if req.Url != "" {
		details["url"] = req.Url
	}

	return s.AlertProxy(ctx, &dto.AlertProxyRequest{
		Source:   "ci",
		Severity: severity,
		Message:  fmt.Sprintf("Pipeline %s finished with %s", req.Pipeline, req.Status),
		Details:  details,
	})
}

func (s *opsService) RunEscalationMonitor(ctx context.Context) (*dto.EscalationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	recent, err := uow.MessageRepository().FindAll(ctx,
		specification.FilterBy{Field: "role", Value: string(entity.RoleUser)},
		specification.CreatedAfter{Time: time.Now().Add(-24 * time.Hour)},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.EscalationResponse{Scanned: len(recent)}
	flagged := make(map[uuid.UUID]string) // one escalation per conversation
	for _, m := range recent {
		lower := strings.ToLower(m.Content)
		for _, marker := range escalationMarkers {
			if strings.Contains(lower, marker) {
				flagged[m.ConversationId] = marker
				break
			}
		}
	}

	for conversationId, marker := range flagged {
		conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
		if err != nil || conversation == nil {
			continue
		}

		notification := &entity.Notification{
			Id:        uuid.New(),
			ProfileId: uuid.Nil, // broadcast to operators
			TypeCode:  events.TypeEscalationRaised,
			Title:     "Conversation needs a human",
			Message:   fmt.Sprintf("A user asked for escalation (matched %q).", marker),
			Metadata: map[string]interface{}{
				"conversation_id": conversationId.String(),
				"profile_id":      conversation.ProfileId.String(),
			},
			CreatedAt: time.Now(),
		}
		if err := uow.NotificationRepository().Create(ctx, notification); err != nil {
			s.logger.Error("OpsService", "Failed to write escalation", map[string]interface{}{"error": err.Error()})
			continue
		}

		if s.eventPublisher != nil {
			event := events.NewEscalationRaised(conversation.ProfileId.String(), conversationId.String(), marker)
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("OpsService", "Failed to publish escalation event", map[string]interface{}{"error": err.Error()})
			}
		}
		res.Escalated++
	}

	return res, nil
}

// RecentEscalations lists the latest raised escalations for operators.
func (s *opsService) RecentEscalations(ctx context.Context) ([]*entity.Notification, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().FindAll(ctx,
		specification.Filter("type_code", events.TypeEscalationRaised),
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 50},
	)
}

func (s *opsService) SocialRecent(ctx context.Context) ([]dto.SocialPostDTO, error) {
	const cacheKey = "social_recent"
	if x, found := s.socialCache.Get(cacheKey); found {
		return x.([]dto.SocialPostDTO), nil
	}

	feedURL := os.Getenv("SOCIAL_FEED_URL")
	if feedURL == "" {
		return []dto.SocialPostDTO{}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("social feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("social feed fetch failed: status %d", resp.StatusCode)
	}

	var posts []dto.SocialPostDTO
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("social feed decode failed: %w", err)
	}

	s.socialCache.Set(cacheKey, posts, cache.DefaultExpiration)
	return posts, nil
}
