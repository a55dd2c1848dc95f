package service

import (
	"TeleVault/internal/repo"
	"TeleVault/model"
	"context"
	"errors"
	"testing"
)

func TestCanUpload(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct {
		name string
		user model.User
		want bool
	}{
		{"regular user", model.User{CanUpload: true}, true},
		{"flag revoked", model.User{CanUpload: false}, false},
		{"banned user", model.User{IsBanned: true, CanUpload: true}, false},
		{"banned admin", model.User{IsBanned: true, IsAdmin: true}, false},
		{"admin without flag", model.User{IsAdmin: true}, true},
		{"moderator without flag", model.User{IsModerator: true}, true},
	}
	for _, tc := range cases {
		if got := CanUpload(&tc.user); got != tc.want {
			t.Errorf("%s: CanUpload = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanUploadRespectsPublicUploadSetting(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateSetting(SettingAllowPublicUpload, "false"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if CanUpload(&model.User{CanUpload: true}) {
		t.Fatal("public upload off should deny regular users")
	}
	if !CanUpload(&model.User{IsAdmin: true}) {
		t.Fatal("public upload off should not affect admins")
	}
}

func TestCanManageFile(t *testing.T) {
	owner := model.User{ID: 1}
	other := model.User{ID: 2}
	admin := model.User{ID: 3, IsAdmin: true}
	banned := model.User{ID: 1, IsBanned: true}
	file := model.File{OwnerID: 1}

	if !CanManageFile(&owner, &file) {
		t.Error("owner denied")
	}
	if CanManageFile(&other, &file) {
		t.Error("non-owner allowed")
	}
	if !CanManageFile(&admin, &file) {
		t.Error("admin denied")
	}
	if CanManageFile(&banned, &file) {
		t.Error("banned owner allowed")
	}
}

// memberStatus answers membership checks from a fixed table; channels not
// in the table error.
type memberStatus map[int64]string

func (m memberStatus) ChatMemberStatus(ctx context.Context, chatID, userID int64) (string, error) {
	status, ok := m[chatID]
	if !ok {
		return "", errors.New("chat not found")
	}
	return status, nil
}

func TestIsSubscribed(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := AddChannel(-100, "News", "https://t.me/news", true); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	if _, err := AddChannel(-200, "Updates", "https://t.me/updates", true); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	ctx := context.Background()
	user := &model.User{TelegramID: 42}

	ok, err := IsSubscribed(ctx, memberStatus{-100: "member", -200: "member"}, user)
	if err != nil || !ok {
		t.Fatalf("member of both: ok=%v err=%v", ok, err)
	}

	ok, err = IsSubscribed(ctx, memberStatus{-100: "member", -200: "left"}, user)
	if err != nil || ok {
		t.Fatalf("left one channel: ok=%v err=%v", ok, err)
	}

	// a lookup failure counts as not subscribed
	ok, err = IsSubscribed(ctx, memberStatus{-100: "member"}, user)
	if err != nil || ok {
		t.Fatalf("lookup error: ok=%v err=%v", ok, err)
	}

	// admins bypass the check entirely
	ok, err = IsSubscribed(ctx, memberStatus{}, &model.User{TelegramID: 7, IsAdmin: true})
	if err != nil || !ok {
		t.Fatalf("admin: ok=%v err=%v", ok, err)
	}
}

func TestIsSubscribedDisabledSetting(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := UpdateSetting(SettingRequireSubscription, "false"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := AddChannel(-100, "News", "https://t.me/news", true); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	ok, err := IsSubscribed(context.Background(), memberStatus{}, &model.User{TelegramID: 1})
	if err != nil || !ok {
		t.Fatalf("setting off should pass everyone: ok=%v err=%v", ok, err)
	}
}
