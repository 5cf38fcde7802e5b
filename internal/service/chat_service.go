package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/repository/memory"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/events"
	"atlas-be/pkg/llm"
	pktNats "atlas-be/pkg/nats"
	"atlas-be/pkg/ratelimit"
	"atlas-be/pkg/utils"

	"github.com/google/uuid"
)

// ErrRateLimited is returned when a profile exceeds its per-minute
// message budget. Controllers map it to 429.
var ErrRateLimited = errors.New("rate limit exceeded")

// messagesPerMinute is the per-tier request budget for chat endpoints.
var messagesPerMinute = map[entity.Tier]int{
	entity.TierFree:   15,
	entity.TierCore:   60,
	entity.TierStudio: 120,
}

const defaultSystemPrompt = "You are Atlas, a warm and concise AI companion. Answer in the language the user writes in."

// historyWindow caps how many messages get sent back to the model.
const historyWindow = 40

type IChatService interface {
	CreateConversation(ctx context.Context, profileId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	GetConversations(ctx context.Context, profileId uuid.UUID) ([]dto.ConversationResponse, error)
	DeleteConversation(ctx context.Context, profileId, conversationId uuid.UUID) error
	GetHistory(ctx context.Context, profileId, conversationId uuid.UUID) ([]dto.MessageDTO, error)

	SendChat(ctx context.Context, profileId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	// StreamChat behaves like SendChat but forwards assistant text
	// fragments to onDelta as they arrive from the model.
	StreamChat(ctx context.Context, profileId uuid.UUID, req *dto.SendChatRequest, onDelta func(string)) (*dto.SendChatResponse, error)

	UploadMessages(ctx context.Context, profileId uuid.UUID, req *dto.UploadMessagesRequest) (*dto.UploadMessagesResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	provider       llm.LLMProvider
	model          string
	cache          *memory.ConversationCache
	limiter        *ratelimit.Limiter
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	provider llm.LLMProvider,
	model string,
	cache *memory.ConversationCache,
	limiter *ratelimit.Limiter,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		provider:       provider,
		model:          model,
		cache:          cache,
		limiter:        limiter,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *chatService) CreateConversation(ctx context.Context, profileId uuid.UUID, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	title := req.Title
	if title == "" {
		title = "New Conversation"
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		ProfileId: profileId,
		Title:     title,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}

	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

func (s *chatService) GetConversations(ctx context.Context, profileId uuid.UUID) ([]dto.ConversationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.OwnedBy{ProfileID: profileId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		res = append(res, dto.ConversationResponse{
			Id:        c.Id,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return res, nil
}

func (s *chatService) DeleteConversation(ctx context.Context, profileId, conversationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.ownedConversation(ctx, uow, profileId, conversationId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MessageRepository().DeleteByConversationId(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.cache.Invalidate(conversation.Id.String())
	return nil
}

func (s *chatService) GetHistory(ctx context.Context, profileId, conversationId uuid.UUID) ([]dto.MessageDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.ownedConversation(ctx, uow, profileId, conversationId); err != nil {
		return nil, err
	}

	messages, err := s.loadHistory(ctx, uow, conversationId)
	if err != nil {
		return nil, err
	}

	res := make([]dto.MessageDTO, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageDTO(m))
	}
	return res, nil
}

func (s *chatService) SendChat(ctx context.Context, profileId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	return s.chat(ctx, profileId, req, nil)
}

func (s *chatService) StreamChat(ctx context.Context, profileId uuid.UUID, req *dto.SendChatRequest, onDelta func(string)) (*dto.SendChatResponse, error) {
	return s.chat(ctx, profileId, req, onDelta)
}

func (s *chatService) chat(ctx context.Context, profileId uuid.UUID, req *dto.SendChatRequest, onDelta func(string)) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	profile, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: profileId})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("profile not found")
	}

	conversation, err := s.ownedConversation(ctx, uow, profileId, req.ConversationId)
	if err != nil {
		return nil, err
	}

	messageId := req.MessageId
	if messageId == uuid.Nil {
		messageId = uuid.New()
	} else {
		// A replayed message id answers from storage before the rate
		// limiter sees it, so resends after a dropped connection are
		// never charged against the window.
		existing, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replayResponse(ctx, uow, conversation.Id, messageId)
		}
	}

	if err := s.checkRateLimit(profile); err != nil {
		return nil, err
	}

	userMessage := &entity.Message{
		Id:             messageId,
		ConversationId: conversation.Id,
		Role:           entity.RoleUser,
		Content:        req.Content,
		CreatedAt:      time.Now(),
	}

	inserted, err := uow.MessageRepository().CreateIfAbsent(ctx, userMessage)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Replay of a message we already answered. Return what we have
		// instead of charging the model twice.
		return s.replayResponse(ctx, uow, conversation.Id, messageId)
	}
	s.cache.Invalidate(conversation.Id.String())

	history, err := s.loadHistory(ctx, uow, conversation.Id)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(history)
	var replyText string
	if onDelta != nil {
		replyText, err = s.provider.ChatStream(ctx, prompt, onDelta, llm.WithModel(s.model), llm.WithSystem(defaultSystemPrompt))
	} else {
		replyText, err = s.provider.Chat(ctx, prompt, llm.WithModel(s.model), llm.WithSystem(defaultSystemPrompt))
	}
	if err != nil {
		s.logger.Error("ChatService", "LLM request failed", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
		return nil, fmt.Errorf("assistant unavailable: %w", err)
	}

	reply := &entity.Message{
		Id:             uuid.New(),
		ConversationId: conversation.Id,
		Role:           entity.RoleAssistant,
		Content:        replyText,
		Model:          s.model,
		CreatedAt:      time.Now(),
	}
	if _, err := uow.MessageRepository().CreateIfAbsent(ctx, reply); err != nil {
		return nil, err
	}
	s.cache.Invalidate(conversation.Id.String())

	conversation.UpdatedAt = time.Now()
	if conversation.Title == "New Conversation" {
		conversation.Title = truncateTitle(req.Content)
	}
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		s.logger.Warn("ChatService", "Failed to touch conversation", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
	}

	s.publishMessageCreated(ctx, conversation.Id, reply.Id, profileId)

	sent := toMessageDTO(userMessage)
	replyDTO := toMessageDTO(reply)
	return &dto.SendChatResponse{
		ConversationId: conversation.Id,
		Sent:           &sent,
		Reply:          &replyDTO,
	}, nil
}

func (s *chatService) UploadMessages(ctx context.Context, profileId uuid.UUID, req *dto.UploadMessagesRequest) (*dto.UploadMessagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversation, err := s.ownedConversation(ctx, uow, profileId, req.ConversationId)
	if err != nil {
		return nil, err
	}

	batch := make([]*entity.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		batch = append(batch, &entity.Message{
			Id:             m.Id,
			ConversationId: conversation.Id,
			Role:           entity.MessageRole(m.Role),
			Content:        m.Content,
			CreatedAt:      m.CreatedAt,
		})
	}
	batch = utils.DedupeMessages(batch)
	utils.SortMessages(batch)

	res := &dto.UploadMessagesResponse{}
	for _, m := range batch {
		inserted, err := uow.MessageRepository().CreateIfAbsent(ctx, m)
		if err != nil {
			return nil, err
		}
		if inserted {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}

	if res.Inserted > 0 {
		s.cache.Invalidate(conversation.Id.String())
	}
	res.Skipped += len(req.Messages) - len(batch)
	return res, nil
}

// --- helpers ---

func (s *chatService) checkRateLimit(profile *entity.Profile) error {
	limit, ok := messagesPerMinute[profile.SubscriptionTier]
	if !ok {
		limit = messagesPerMinute[entity.TierFree]
	}
	if !s.limiter.Allow(profile.Id.String(), limit) {
		return ErrRateLimited
	}
	return nil
}

func (s *chatService) ownedConversation(ctx context.Context, uow unitofwork.UnitOfWork, profileId, conversationId uuid.UUID) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: conversationId},
		specification.OwnedBy{ProfileID: profileId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, errors.New("conversation not found")
	}
	return conversation, nil
}

func (s *chatService) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, conversationId uuid.UUID) ([]*entity.Message, error) {
	if cached, found := s.cache.Get(conversationId.String()); found {
		return cached, nil
	}

	messages, err := uow.MessageRepository().FindAll(ctx,
		specification.FilterBy{Field: "conversation_id", Value: conversationId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	messages = utils.NormalizeMessages(messages)
	s.cache.Save(conversationId.String(), messages)
	return messages, nil
}

// replayResponse answers a duplicate send with the stored exchange.
func (s *chatService) replayResponse(ctx context.Context, uow unitofwork.UnitOfWork, conversationId, messageId uuid.UUID) (*dto.SendChatResponse, error) {
	sentMsg, err := uow.MessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return nil, err
	}

	res := &dto.SendChatResponse{
		ConversationId: conversationId,
		Duplicate:      true,
	}
	if sentMsg != nil {
		sent := toMessageDTO(sentMsg)
		res.Sent = &sent

		replyMsg, err := uow.MessageRepository().FindOne(ctx,
			specification.FilterBy{Field: "conversation_id", Value: conversationId},
			specification.FilterBy{Field: "role", Value: string(entity.RoleAssistant)},
			specification.CreatedAfter{Time: sentMsg.CreatedAt.Add(-time.Millisecond)},
			specification.OrderBy{Field: "created_at"},
		)
		if err != nil {
			return nil, err
		}
		if replyMsg != nil {
			reply := toMessageDTO(replyMsg)
			res.Reply = &reply
		}
	}
	return res, nil
}

func (s *chatService) publishMessageCreated(ctx context.Context, conversationId, messageId, profileId uuid.UUID) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewMessageCreated(conversationId.String(), messageId.String(), profileId.String(), string(entity.RoleAssistant))
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ChatService", "Failed to publish message event", map[string]interface{}{
			"message_id": messageId.String(),
			"error":      err.Error(),
		})
	}
}

func buildPrompt(history []*entity.Message) []llm.Message {
	start := 0
	if len(history) > historyWindow {
		start = len(history) - historyWindow
	}
	prompt := make([]llm.Message, 0, len(history)-start)
	for _, m := range history[start:] {
		prompt = append(prompt, llm.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return prompt
}

func truncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= 60 {
		return content
	}
	return string(runes[:60]) + "..."
}

func toMessageDTO(m *entity.Message) dto.MessageDTO {
	return dto.MessageDTO{
		Id:        m.Id,
		Role:      string(m.Role),
		Content:   m.Content,
		Model:     m.Model,
		CreatedAt: m.CreatedAt,
	}
}
