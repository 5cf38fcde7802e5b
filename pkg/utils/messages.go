package utils

import (
	"sort"

	"atlas-be/internal/entity"
)

// DedupeMessages drops repeated message ids, keeping the first
// occurrence. Replayed offline uploads can hand us the same message
// more than once.
func DedupeMessages(messages []*entity.Message) []*entity.Message {
	seen := make(map[string]struct{}, len(messages))
	out := make([]*entity.Message, 0, len(messages))
	for _, msg := range messages {
		key := msg.Id.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, msg)
	}
	return out
}

// SortMessages orders messages by creation time, falling back to id so
// messages stamped in the same millisecond keep a stable order.
func SortMessages(messages []*entity.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].Id.String() < messages[j].Id.String()
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

// NormalizeMessages dedupes then sorts, the canonical shape for a
// conversation history response.
func NormalizeMessages(messages []*entity.Message) []*entity.Message {
	out := DedupeMessages(messages)
	SortMessages(out)
	return out
}
