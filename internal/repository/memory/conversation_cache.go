package memory

import (
	"time"

	"atlas-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

type ConversationCache struct {
	cache *cache.Cache
}

func NewConversationCache() *ConversationCache {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ConversationCache{
		cache: c,
	}
}

func (r *ConversationCache) Save(conversationID string, messages []*entity.Message) {
	r.cache.Set(conversationID, messages, cache.DefaultExpiration)
}

func (r *ConversationCache) Get(conversationID string) ([]*entity.Message, bool) {
	if x, found := r.cache.Get(conversationID); found {
		return x.([]*entity.Message), true
	}
	return nil, false
}

func (r *ConversationCache) Invalidate(conversationID string) {
	r.cache.Delete(conversationID)
}
