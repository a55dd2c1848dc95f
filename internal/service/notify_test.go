package service

import (
	"TeleVault/internal/repo"
	"TeleVault/internal/transport"
	"TeleVault/model"
	"context"
	"errors"
	"testing"
)

// recordingSender remembers delivered texts per chat.
type recordingSender struct {
	sent map[int64][]string
	err  error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: map[int64][]string{}}
}

func (s *recordingSender) SendMessage(ctx context.Context, chatID int64, text string, kb transport.Keyboard) error {
	if s.err != nil {
		return s.err
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return nil
}

// recordingQueue collects published notification ids.
type recordingQueue struct {
	ids []uint64
}

func (q *recordingQueue) PublishNotification(id uint64) error {
	q.ids = append(q.ids, id)
	return nil
}

func TestNotifyInlineDelivery(t *testing.T) {
	repo.InitTestDb()
	user, err := GetOrCreateUser(UserIdentity{TelegramID: 10})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	sender := newRecordingSender()

	if err := Notify(context.Background(), sender, nil, user.ID, "hello", NotifyGeneral); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.sent[10]) != 1 || sender.sent[10][0] != "hello" {
		t.Fatalf("sent = %v", sender.sent)
	}

	var n model.Notification
	if err := repo.Db.First(&n).Error; err != nil {
		t.Fatalf("row: %v", err)
	}
	if !n.Delivered || n.DeliveredAt == nil {
		t.Fatal("delivery not recorded")
	}
}

func TestNotifyPrefersQueue(t *testing.T) {
	repo.InitTestDb()
	user, err := GetOrCreateUser(UserIdentity{TelegramID: 10})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	sender := newRecordingSender()
	queue := &recordingQueue{}

	if err := Notify(context.Background(), sender, queue, user.ID, "queued", NotifyGeneral); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(queue.ids) != 1 {
		t.Fatalf("published %d ids, want 1", len(queue.ids))
	}
	if len(sender.sent) != 0 {
		t.Fatal("inline delivery despite a working queue")
	}

	var n model.Notification
	if err := repo.Db.First(&n).Error; err != nil {
		t.Fatalf("row: %v", err)
	}
	if n.Delivered {
		t.Fatal("row marked delivered before the worker ran")
	}
}

func TestDeliverNotificationIdempotent(t *testing.T) {
	repo.InitTestDb()
	user, err := GetOrCreateUser(UserIdentity{TelegramID: 10})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	queue := &recordingQueue{}
	if err := Notify(context.Background(), nil, queue, user.ID, "once", NotifyGeneral); err != nil {
		t.Fatalf("notify: %v", err)
	}

	sender := newRecordingSender()
	for i := 0; i < 2; i++ {
		if err := DeliverNotification(context.Background(), sender, queue.ids[0]); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}
	if len(sender.sent[10]) != 1 {
		t.Fatalf("delivered %d times, want 1", len(sender.sent[10]))
	}
}

func TestNotifyFailedDeliveryLeavesRowUndelivered(t *testing.T) {
	repo.InitTestDb()
	user, err := GetOrCreateUser(UserIdentity{TelegramID: 10})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	sender := newRecordingSender()
	sender.err = errors.New("network down")

	if err := Notify(context.Background(), sender, nil, user.ID, "lost", NotifyGeneral); err != nil {
		t.Fatalf("notify: %v", err)
	}
	pending, err := UndeliveredNotifications(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("got %d undelivered rows, want 1", len(pending))
	}
}

func TestBroadcastSkipsBanned(t *testing.T) {
	repo.InitTestDb()
	for id := int64(1); id <= 3; id++ {
		if _, err := GetOrCreateUser(UserIdentity{TelegramID: id}); err != nil {
			t.Fatalf("user %d: %v", id, err)
		}
	}
	banned := true
	var second model.User
	repo.Db.Where("telegram_id = ?", 2).First(&second)
	if err := UpdateUserFlags(second.ID, UserFlags{IsBanned: &banned}); err != nil {
		t.Fatalf("ban: %v", err)
	}

	sender := newRecordingSender()
	sent, err := Broadcast(context.Background(), sender, nil, "announcement", 0)
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if len(sender.sent[2]) != 0 {
		t.Fatal("banned user received the broadcast")
	}
}
