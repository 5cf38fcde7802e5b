package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"atlas-be/internal/dto"
	"atlas-be/internal/entity"
	"atlas-be/internal/repository/memory"

	"atlas-be/pkg/ratelimit"

	"github.com/google/uuid"
)

func TestTruncateTitle(t *testing.T) {
	short := "Weekend plans"
	if got := truncateTitle(short); got != short {
		t.Errorf("short title changed: %q", got)
	}

	long := strings.Repeat("a", 100)
	got := truncateTitle(long)
	if len([]rune(got)) != 63 || !strings.HasSuffix(got, "...") {
		t.Errorf("long title = %q (len %d)", got, len([]rune(got)))
	}

	// Runes, not bytes.
	multibyte := strings.Repeat("ありがとう", 20)
	got = truncateTitle(multibyte)
	if !strings.HasPrefix(got, "ありがとう") || !strings.HasSuffix(got, "...") {
		t.Errorf("multibyte title = %q", got)
	}
}

func TestSendChatResendDoesNotChargeWindow(t *testing.T) {
	profileId := uuid.New()
	conversationId := uuid.New()
	messageId := uuid.New()
	now := time.Now()

	uow := newFakeUow()
	uow.users.profiles = append(uow.users.profiles, &entity.Profile{
		Id:               profileId,
		Email:            "free@atlas.dev",
		SubscriptionTier: entity.TierFree,
	})
	uow.conversations.conversations = append(uow.conversations.conversations, &entity.Conversation{
		Id:        conversationId,
		ProfileId: profileId,
		Title:     "Weekend plans",
	})
	uow.messages.messages = append(uow.messages.messages,
		&entity.Message{
			Id:             messageId,
			ConversationId: conversationId,
			Role:           entity.RoleUser,
			Content:        "any hiking ideas?",
			CreatedAt:      now.Add(-2 * time.Second),
		},
		&entity.Message{
			Id:             uuid.New(),
			ConversationId: conversationId,
			Role:           entity.RoleAssistant,
			Content:        "Plenty, depends on the weather.",
			CreatedAt:      now.Add(-1 * time.Second),
		},
	)

	provider := &countingProvider{reply: "should not be asked"}
	limiter := ratelimit.New(time.Minute)
	svc := NewChatService(&fakeUowFactory{uow: uow}, provider, "test-model", memory.NewConversationCache(), limiter, nil, stubLogger{})

	res, err := svc.SendChat(context.Background(), profileId, &dto.SendChatRequest{
		ConversationId: conversationId,
		MessageId:      messageId,
		Content:        "any hiking ideas?",
	})
	if err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if !res.Duplicate {
		t.Error("resend of an answered message not flagged as duplicate")
	}
	if res.Reply == nil || res.Reply.Content != "Plenty, depends on the weather." {
		t.Errorf("resend did not return the stored reply: %+v", res.Reply)
	}
	if provider.calls != 0 {
		t.Errorf("resend reached the model %d times", provider.calls)
	}
	if got := limiter.Remaining(profileId.String(), messagesPerMinute[entity.TierFree]); got != messagesPerMinute[entity.TierFree] {
		t.Errorf("resend consumed a rate-limit slot: remaining = %d", got)
	}
	if len(uow.messages.messages) != 2 {
		t.Errorf("resend wrote rows: %d messages stored", len(uow.messages.messages))
	}

	// A genuinely new message still costs a slot and reaches the model.
	if _, err := svc.SendChat(context.Background(), profileId, &dto.SendChatRequest{
		ConversationId: conversationId,
		Content:        "what about this sunday?",
	}); err != nil {
		t.Fatalf("fresh send failed: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("fresh send reached the model %d times", provider.calls)
	}
	if got := limiter.Remaining(profileId.String(), messagesPerMinute[entity.TierFree]); got != messagesPerMinute[entity.TierFree]-1 {
		t.Errorf("fresh send charged %d slots", messagesPerMinute[entity.TierFree]-got)
	}
}

func TestSendChatRateLimitPerTier(t *testing.T) {
	profileId := uuid.New()
	conversationId := uuid.New()

	uow := newFakeUow()
	uow.users.profiles = append(uow.users.profiles, &entity.Profile{
		Id:               profileId,
		Email:            "free@atlas.dev",
		SubscriptionTier: entity.TierFree,
	})
	uow.conversations.conversations = append(uow.conversations.conversations, &entity.Conversation{
		Id:        conversationId,
		ProfileId: profileId,
		Title:     "New Conversation",
	})

	provider := &countingProvider{reply: "ok"}
	limiter := ratelimit.New(time.Minute)
	svc := NewChatService(&fakeUowFactory{uow: uow}, provider, "test-model", memory.NewConversationCache(), limiter, nil, stubLogger{})

	for i := 0; i < messagesPerMinute[entity.TierFree]; i++ {
		if _, err := svc.SendChat(context.Background(), profileId, &dto.SendChatRequest{
			ConversationId: conversationId,
			Content:        "hello",
		}); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	_, err := svc.SendChat(context.Background(), profileId, &dto.SendChatRequest{
		ConversationId: conversationId,
		Content:        "one too many",
	})
	if err != ErrRateLimited {
		t.Errorf("over-budget send returned %v, want ErrRateLimited", err)
	}
}
