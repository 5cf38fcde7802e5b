package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"atlas-be/internal/entity"

	"github.com/google/uuid"
)

func TestMapProductToTier(t *testing.T) {
	cases := []struct {
		product string
		tier    entity.Tier
		known   bool
	}{
		{"atlas-studio-monthly", entity.TierStudio, true},
		{"Atlas Studio Annual", entity.TierStudio, true},
		{"atlas-core-monthly", entity.TierCore, true},
		{"Atlas Core", entity.TierCore, true},
		{"pri_studio_01xyz", entity.TierStudio, true},
		{"some-legacy-product", entity.TierFree, false},
		{"", entity.TierFree, false},
	}

	for _, c := range cases {
		tier, known := mapProductToTier(c.product)
		if tier != c.tier || known != c.known {
			t.Errorf("mapProductToTier(%q) = (%v, %v), want (%v, %v)", c.product, tier, known, c.tier, c.known)
		}
	}
}

func TestParseFastSpringDate(t *testing.T) {
	if got := parseFastSpringDate("2026-03-15"); got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("date-only layout parsed to %v", got)
	}

	if got := parseFastSpringDate("2026-03-15T10:30:00Z"); got.Hour() != 10 {
		t.Errorf("RFC3339 layout parsed to %v", got)
	}

	// Unparseable values fall back to one month out rather than zero time.
	got := parseFastSpringDate("not-a-date")
	if got.Before(time.Now().AddDate(0, 0, 27)) {
		t.Errorf("fallback period end too close: %v", got)
	}
}

func signFastSpring(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestHandleFastSpringBadSignatureLeavesOnlyAuditRow(t *testing.T) {
	const secret = "fs-webhook-secret"

	profileId := uuid.New()
	uow := newFakeUow()
	uow.users.profiles = append(uow.users.profiles, &entity.Profile{
		Id:               profileId,
		Email:            "core@atlas.dev",
		SubscriptionTier: entity.TierFree,
	})

	svc := NewBillingService(&fakeUowFactory{uow: uow}, &stubMailer{}, nil, stubLogger{}, secret, "", 7)

	body := []byte(fmt.Sprintf(`{"events":[{"id":"ev-1","type":"subscription.activated","data":{"id":"sub-123","product":"atlas-core-monthly","account":{"contact":{"email":"core@atlas.dev"}},"next":"2026-10-01","tags":{"profile_id":%q}}}]}`, profileId))

	err := svc.HandleFastSpring(context.Background(), body, "forged-signature")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("forged signature returned %v, want ErrInvalidSignature", err)
	}

	if len(uow.audits.webhookLogs) != 1 {
		t.Fatalf("rejected delivery wrote %d audit rows, want 1", len(uow.audits.webhookLogs))
	}
	log := uow.audits.webhookLogs[0]
	if log.SignatureValid || log.Status != entity.WebhookStatusRejected {
		t.Errorf("audit row = valid %v status %q, want invalid/rejected", log.SignatureValid, log.Status)
	}
	if uow.subscriptions.upsertCalls != 0 {
		t.Errorf("rejected delivery upserted %d subscriptions", uow.subscriptions.upsertCalls)
	}
	if len(uow.users.tierUpdates) != 0 {
		t.Errorf("rejected delivery changed tiers: %v", uow.users.tierUpdates)
	}

	// The same body with a real signature does mutate state.
	if err := svc.HandleFastSpring(context.Background(), body, signFastSpring(secret, body)); err != nil {
		t.Fatalf("signed delivery failed: %v", err)
	}
	if uow.subscriptions.upsertCalls != 1 {
		t.Errorf("signed delivery upserted %d subscriptions, want 1", uow.subscriptions.upsertCalls)
	}
	if len(uow.users.tierUpdates) != 1 || uow.users.tierUpdates[0] != entity.TierCore {
		t.Errorf("signed delivery tier updates = %v, want [core]", uow.users.tierUpdates)
	}
}
