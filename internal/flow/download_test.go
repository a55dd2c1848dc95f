package flow

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/internal/storage"
	"TeleVault/model"
	"TeleVault/utils"
	"bytes"
	"context"
	"testing"
)

func setupDownloadTest(t *testing.T) (*DownloadFlow, *fakeTransport, *model.User, *model.User) {
	t.Helper()
	repo.InitTestDb()
	if err := service.SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	config.AppConfig.BotUsername = "test_bot"
	config.AppConfig.StorageChannelID = -100999

	tg := newFakeTransport()
	df := &DownloadFlow{Sessions: session.NewMemoryStore(), Transport: tg, Store: storage.NewMemoryStore()}

	owner, err := service.GetOrCreateUser(service.UserIdentity{TelegramID: 1, FirstName: "Owner"})
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	downloader, err := service.GetOrCreateUser(service.UserIdentity{TelegramID: 2, FirstName: "Dl"})
	if err != nil {
		t.Fatalf("downloader: %v", err)
	}
	return df, tg, owner, downloader
}

func commitTestFile(t *testing.T, owner *model.User, password string) *model.File {
	t.Helper()
	draft := service.UploadDraft{
		TelegramFileID: "F", FileUniqueID: "f", MessageID: 42,
		FileName: "thing.pdf", FileSize: 100, FileType: "document",
	}
	if password != "" {
		draft.Password = &password
	}
	file, err := service.CommitUpload(owner, draft)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return file
}

func TestRedeemUnprotectedFile(t *testing.T) {
	df, tg, owner, downloader := setupDownloadTest(t)
	ctx := context.Background()
	file := commitTestFile(t, owner, "")

	if err := df.Redeem(ctx, downloader, file.ShareCode); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if df.Active(ctx, downloader) {
		t.Fatal("no challenge expected for an unprotected file")
	}
	if len(tg.copied) != 1 || tg.copied[0] != 42 {
		t.Fatalf("copied = %v, want [42]", tg.copied)
	}

	reloaded, _ := service.GetFileByID(file.ID)
	if reloaded.DownloadCount != 1 {
		t.Fatalf("download_count = %d, want 1", reloaded.DownloadCount)
	}
	// redemption is a download, not a details view
	if reloaded.ViewCount != 0 {
		t.Fatalf("view_count = %d, want 0", reloaded.ViewCount)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	df, tg, _, downloader := setupDownloadTest(t)
	ctx := context.Background()

	if err := df.Redeem(ctx, downloader, "AAAAAAAAAA"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if len(tg.copied) != 0 {
		t.Fatal("unknown code delivered something")
	}
	if tg.lastMessage() == "" {
		t.Fatal("no not-found response")
	}
}

func TestPasswordChallengeWrongThenCorrect(t *testing.T) {
	df, tg, owner, downloader := setupDownloadTest(t)
	ctx := context.Background()
	file := commitTestFile(t, owner, "letmein")

	if err := df.Redeem(ctx, downloader, file.ShareCode); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !df.Active(ctx, downloader) {
		t.Fatal("challenge not opened")
	}
	if len(tg.copied) != 0 {
		t.Fatal("file delivered before the password")
	}

	if err := df.Handle(ctx, downloader, TextInput{Text: "wrong"}); err != nil {
		t.Fatalf("wrong: %v", err)
	}
	if len(tg.copied) != 0 {
		t.Fatal("wrong password delivered the file")
	}
	reloaded, _ := service.GetFileByID(file.ID)
	if reloaded.DownloadCount != 0 {
		t.Fatal("counter moved on a failed attempt")
	}
	if reloaded.ViewCount != 0 {
		t.Fatal("view counter moved on a password challenge")
	}

	if err := df.Handle(ctx, downloader, TextInput{Text: "letmein"}); err != nil {
		t.Fatalf("correct: %v", err)
	}
	if len(tg.copied) != 1 {
		t.Fatal("correct password did not deliver")
	}
	if df.Active(ctx, downloader) {
		t.Fatal("challenge not closed after delivery")
	}
	reloaded, _ = service.GetFileByID(file.ID)
	if reloaded.DownloadCount != 1 {
		t.Fatalf("download_count = %d, want 1", reloaded.DownloadCount)
	}
}

func TestPasswordAttemptsExhausted(t *testing.T) {
	df, tg, owner, downloader := setupDownloadTest(t)
	ctx := context.Background()
	file := commitTestFile(t, owner, "secret")

	if err := service.UpdateSetting(service.SettingMaxPasswordAttempts, "2"); err != nil {
		t.Fatalf("setting: %v", err)
	}

	if err := df.Redeem(ctx, downloader, file.ShareCode); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := df.Handle(ctx, downloader, TextInput{Text: "nope"}); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}
	if df.Active(ctx, downloader) {
		t.Fatal("challenge still open after the attempt cap")
	}
	// the next text must not be treated as a password
	if err := df.Handle(ctx, downloader, TextInput{Text: "secret"}); err != nil {
		t.Fatalf("post-cap text: %v", err)
	}
	if len(tg.copied) != 0 {
		t.Fatal("delivery after exhausted attempts")
	}
}

func TestDeliverObjectStoredFile(t *testing.T) {
	df, tg, owner, downloader := setupDownloadTest(t)
	ctx := context.Background()

	sealed, err := utils.EncryptBytes([]byte("object bytes"), "k3y")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if err := df.Store.PutObject(ctx, "obj-1", bytes.NewReader(sealed), int64(len(sealed)), storage.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	pwd := "k3y"
	file, err := service.CommitUpload(owner, service.UploadDraft{
		StorageObject: "obj-1", FileName: "api.bin", FileSize: 12,
		FileType: "document", Password: &pwd, IsEncrypted: true,
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := df.Redeem(ctx, downloader, file.ShareCode); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if err := df.Handle(ctx, downloader, TextInput{Text: "k3y"}); err != nil {
		t.Fatalf("password: %v", err)
	}
	if len(tg.docUploads) != 1 || tg.docUploads[0] != "api.bin" {
		t.Fatalf("docUploads = %v", tg.docUploads)
	}
	if len(tg.copied) != 0 {
		t.Fatal("object file went through the relay copy path")
	}
}
