package utils

import (
	"testing"
	"time"

	"atlas-be/internal/entity"

	"github.com/google/uuid"
)

func msg(id string, at time.Time) *entity.Message {
	return &entity.Message{
		Id:        uuid.MustParse(id),
		Role:      entity.RoleUser,
		Content:   "hello",
		CreatedAt: at,
	}
}

func TestDedupeMessages(t *testing.T) {
	now := time.Now()
	a := msg("11111111-1111-1111-1111-111111111111", now)
	b := msg("22222222-2222-2222-2222-222222222222", now.Add(time.Second))
	dup := msg("11111111-1111-1111-1111-111111111111", now.Add(2*time.Second))

	got := DedupeMessages([]*entity.Message{a, b, dup})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Error("dedupe did not keep first occurrences in order")
	}
}

func TestSortMessagesByTimeThenId(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	late := msg("11111111-1111-1111-1111-111111111111", base.Add(time.Minute))
	earlyB := msg("99999999-9999-9999-9999-999999999999", base)
	earlyA := msg("22222222-2222-2222-2222-222222222222", base)

	messages := []*entity.Message{late, earlyB, earlyA}
	SortMessages(messages)

	if messages[0] != earlyA || messages[1] != earlyB || messages[2] != late {
		t.Errorf("order = [%s %s %s], want ties broken by id", messages[0].Id, messages[1].Id, messages[2].Id)
	}
}

func TestNormalizeMessages(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a := msg("11111111-1111-1111-1111-111111111111", base.Add(time.Second))
	b := msg("22222222-2222-2222-2222-222222222222", base)
	dup := msg("11111111-1111-1111-1111-111111111111", base.Add(time.Second))

	got := NormalizeMessages([]*entity.Message{a, dup, b})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != b || got[1] != a {
		t.Error("normalize did not sort after dedupe")
	}
}
