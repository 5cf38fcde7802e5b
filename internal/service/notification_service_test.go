package service

import (
	"context"
	"testing"
	"time"

	"atlas-be/internal/entity"

	"github.com/google/uuid"
)

func TestMarkReadScopedToOwner(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	notificationId := uuid.New()

	uow := newFakeUow()
	uow.notifications.notifications = append(uow.notifications.notifications, &entity.Notification{
		Id:        notificationId,
		ProfileId: owner,
		TypeCode:  "PAYMENT_FAILED",
		Title:     "Payment problem",
		CreatedAt: time.Now(),
	})

	svc := NewNotificationService(&fakeUowFactory{uow: uow}, nil, nil, stubLogger{})

	// Someone else marking the notification leaves it unread.
	if err := svc.MarkRead(context.Background(), other, notificationId); err != nil {
		t.Fatalf("MarkRead as non-owner errored: %v", err)
	}
	if uow.notifications.notifications[0].IsRead {
		t.Error("non-owner flipped another profile's notification")
	}

	if err := svc.MarkRead(context.Background(), owner, notificationId); err != nil {
		t.Fatalf("MarkRead as owner errored: %v", err)
	}
	if !uow.notifications.notifications[0].IsRead {
		t.Error("owner could not mark own notification read")
	}

	for _, call := range uow.notifications.markReadCalls {
		if call.ProfileId == uuid.Nil {
			t.Error("MarkRead reached the repository without a profile id")
		}
	}
}
