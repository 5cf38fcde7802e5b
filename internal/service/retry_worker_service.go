package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/voice"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// failFastMarkers in a stored error mean another attempt cannot
// succeed, so the worker gives up immediately.
var failFastMarkers = []string{
	"status 401",
	"status 403",
	"status 429",
	"zero confidence",
}

type IRetryWorkerService interface {
	Consume(ctx context.Context) error
}

type retryWorkerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewRetryWorkerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IRetryWorkerService {
	return &retryWorkerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (s *retryWorkerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *retryWorkerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload struct {
		RetryLogId string `json:"retry_log_id"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal retry job: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	retryLogId, err := uuid.Parse(payload.RetryLogId)
	if err != nil {
		log.Printf("[ERROR] Invalid retry log id %q: %v", payload.RetryLogId, err)
		msg.Ack()
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	logs, err := uow.AuditRepository().FindRetryLogs(ctx, specification.ByID{ID: retryLogId})
	if err != nil {
		log.Printf("[ERROR] Failed to load retry log %s: %v", retryLogId, err)
		msg.Nack()
		return
	}
	if len(logs) == 0 || logs[0].ResolvedAt != nil {
		msg.Ack() // Gone or already handled.
		return
	}
	retryLog := logs[0]

	now := time.Now()
	resolve := func(note string) {
		retryLog.ResolvedAt = &now
		if note != "" {
			retryLog.LastError = note
		}
	}

	lowerErr := strings.ToLower(retryLog.LastError)
	for _, marker := range failFastMarkers {
		if strings.Contains(lowerErr, marker) {
			resolve("gave up: " + retryLog.LastError)
			break
		}
	}

	if retryLog.ResolvedAt == nil {
		switch retryLog.Resource {
		case "message_upload":
			// The upload is done once the message row exists.
			if id, err := uuid.Parse(retryLog.ResourceId); err == nil {
				existing, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: id})
				if err != nil {
					log.Printf("[ERROR] Failed to check message %s: %v", retryLog.ResourceId, err)
					msg.Nack()
					return
				}
				if existing != nil {
					resolve("")
				}
			}
		}
	}

	if retryLog.ResolvedAt == nil {
		retryLog.Attempts++
		if retryLog.Attempts >= voice.MaxAttempts {
			resolve("gave up after max attempts: " + retryLog.LastError)
		}
	}

	retryLog.UpdatedAt = now
	if err := uow.AuditRepository().UpdateRetryLog(ctx, retryLog); err != nil {
		log.Printf("[ERROR] Failed to update retry log %s: %v", retryLog.Id, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Retry job processed for %s (attempts=%d resolved=%v)", retryLog.Id, retryLog.Attempts, retryLog.ResolvedAt != nil)
	msg.Ack()
}
