package service

import (
	"context"

	"atlas-be/internal/entity"
	"atlas-be/internal/repository/contract"
	"atlas-be/internal/repository/specification"
	"atlas-be/internal/repository/unitofwork"

	"atlas-be/pkg/llm"

	"github.com/google/uuid"
)

// In-memory doubles for driving service flows without a database. They
// interpret only the specifications the services actually apply.

type stubLogger struct{}

func (stubLogger) Debug(module, message string, details map[string]interface{}) {}
func (stubLogger) Info(module, message string, details map[string]interface{})  {}
func (stubLogger) Warn(module, message string, details map[string]interface{})  {}
func (stubLogger) Error(module, message string, details map[string]interface{}) {}
func (stubLogger) Sync() error                                                  { return nil }

type stubMailer struct {
	welcomeSent       int
	paymentFailedSent int
}

func (m *stubMailer) SendWelcome(toEmail, name string) error {
	m.welcomeSent++
	return nil
}

func (m *stubMailer) SendPaymentFailed(toEmail string) error {
	m.paymentFailedSent++
	return nil
}

type countingProvider struct {
	calls int
	reply string
}

func (p *countingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.calls++
	return p.reply, nil
}

func (p *countingProvider) ChatStream(ctx context.Context, history []llm.Message, onDelta func(string), options ...llm.Option) (string, error) {
	p.calls++
	if onDelta != nil {
		onDelta(p.reply)
	}
	return p.reply, nil
}

func (p *countingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.calls++
	return p.reply, nil
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeUow struct {
	users         *fakeUserRepo
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	subscriptions *fakeSubscriptionRepo
	audits        *fakeAuditRepo
	notifications *fakeNotificationRepo
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		users:         &fakeUserRepo{},
		conversations: &fakeConversationRepo{},
		messages:      &fakeMessageRepo{},
		subscriptions: &fakeSubscriptionRepo{},
		audits:        &fakeAuditRepo{},
		notifications: &fakeNotificationRepo{},
	}
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository                 { return u.users }
func (u *fakeUow) ConversationRepository() contract.ConversationRepository { return u.conversations }
func (u *fakeUow) MessageRepository() contract.MessageRepository           { return u.messages }
func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository { return u.subscriptions }
func (u *fakeUow) AuditRepository() contract.AuditRepository               { return u.audits }
func (u *fakeUow) NotificationRepository() contract.NotificationRepository { return u.notifications }

// --- users ---

type fakeUserRepo struct {
	profiles    []*entity.Profile
	tierUpdates []entity.Tier
}

func matchProfile(p *entity.Profile, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if p.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if p.Email != s.Email {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) Create(ctx context.Context, profile *entity.Profile) error {
	r.profiles = append(r.profiles, profile)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, profile *entity.Profile) error { return nil }

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Profile, error) {
	for _, p := range r.profiles {
		if matchProfile(p, specs) {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Profile, error) {
	var out []*entity.Profile
	for _, p := range r.profiles {
		if matchProfile(p, specs) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

func (r *fakeUserRepo) UpdateTier(ctx context.Context, id uuid.UUID, tier entity.Tier) error {
	r.tierUpdates = append(r.tierUpdates, tier)
	for _, p := range r.profiles {
		if p.Id == id {
			p.SubscriptionTier = tier
		}
	}
	return nil
}

func (r *fakeUserRepo) SetMarketingOptIn(ctx context.Context, email string, optIn bool) error {
	return nil
}

func (r *fakeUserRepo) CreateProvider(ctx context.Context, provider *entity.ProfileProvider) error {
	return nil
}

func (r *fakeUserRepo) FindProvider(ctx context.Context, providerName, providerUserId string) (*entity.ProfileProvider, error) {
	return nil, nil
}

// --- conversations ---

type fakeConversationRepo struct {
	conversations []*entity.Conversation
}

func matchConversation(c *entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if c.ProfileId != s.ProfileID {
				return false
			}
		}
	}
	return true
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.conversations = append(r.conversations, conversation)
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	for _, c := range r.conversations {
		if matchConversation(c, specs) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	for _, c := range r.conversations {
		if matchConversation(c, specs) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

// --- messages ---

type fakeMessageRepo struct {
	messages []*entity.Message
}

func matchMessage(m *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if m.Id != s.ID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "conversation_id":
				if id, ok := s.Value.(uuid.UUID); !ok || m.ConversationId != id {
					return false
				}
			case "role":
				if role, ok := s.Value.(string); !ok || string(m.Role) != role {
					return false
				}
			}
		case specification.CreatedAfter:
			if !m.CreatedAt.After(s.Time) {
				return false
			}
		}
	}
	return true
}

func (r *fakeMessageRepo) CreateIfAbsent(ctx context.Context, message *entity.Message) (bool, error) {
	for _, m := range r.messages {
		if m.Id == message.Id {
			return false, nil
		}
	}
	r.messages = append(r.messages, message)
	return true, nil
}

func (r *fakeMessageRepo) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.ConversationId != conversationId {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	for _, m := range r.messages {
		if matchMessage(m, specs) {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, m := range r.messages {
		if matchMessage(m, specs) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

// --- subscriptions ---

type fakeSubscriptionRepo struct {
	subs        []*entity.Subscription
	upsertCalls int
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *entity.Subscription) error {
	r.upsertCalls++
	for i, existing := range r.subs {
		if existing.Provider == sub.Provider && existing.ExternalId == sub.ExternalId {
			r.subs[i] = sub
			return nil
		}
	}
	r.subs = append(r.subs, sub)
	return nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	for i, existing := range r.subs {
		if existing.Id == sub.Id {
			r.subs[i] = sub
		}
	}
	return nil
}

func matchSubscription(sub *entity.Subscription, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByExternalId:
			if string(sub.Provider) != s.Provider || sub.ExternalId != s.ExternalId {
				return false
			}
		case specification.OwnedBy:
			if sub.ProfileId != s.ProfileID {
				return false
			}
		}
	}
	return true
}

func (r *fakeSubscriptionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	for _, sub := range r.subs {
		if matchSubscription(sub, specs) {
			return sub, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var out []*entity.Subscription
	for _, sub := range r.subs {
		if matchSubscription(sub, specs) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, _ := r.FindAll(ctx, specs...)
	return int64(len(found)), nil
}

// --- audit ---

type fakeAuditRepo struct {
	webhookLogs []*entity.WebhookLog
}

func (r *fakeAuditRepo) CreateWebhookLog(ctx context.Context, log *entity.WebhookLog) error {
	r.webhookLogs = append(r.webhookLogs, log)
	return nil
}

func (r *fakeAuditRepo) FindWebhookLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookLog, error) {
	return r.webhookLogs, nil
}

func (r *fakeAuditRepo) CountWebhookLogs(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.webhookLogs)), nil
}

func (r *fakeAuditRepo) CreateRetryLog(ctx context.Context, log *entity.RetryLog) error { return nil }
func (r *fakeAuditRepo) UpdateRetryLog(ctx context.Context, log *entity.RetryLog) error { return nil }

func (r *fakeAuditRepo) FindRetryLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.RetryLog, error) {
	return nil, nil
}

func (r *fakeAuditRepo) CountRetryLogs(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (r *fakeAuditRepo) CreateEmailLog(ctx context.Context, log *entity.EmailLog) error { return nil }

func (r *fakeAuditRepo) FindEmailLogs(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailLog, error) {
	return nil, nil
}

// --- notifications ---

type markReadCall struct {
	Id        uuid.UUID
	ProfileId uuid.UUID
}

type fakeNotificationRepo struct {
	notifications []*entity.Notification
	markReadCalls []markReadCall
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID, profileId uuid.UUID) error {
	r.markReadCalls = append(r.markReadCalls, markReadCall{Id: id, ProfileId: profileId})
	for _, n := range r.notifications {
		if n.Id == id && n.ProfileId == profileId {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	return r.notifications, nil
}
