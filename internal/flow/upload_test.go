package flow

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/internal/session"
	"TeleVault/model"
	"context"
	"strings"
	"testing"
)

func setupUploadTest(t *testing.T) (*UploadFlow, *fakeTransport, *model.User) {
	t.Helper()
	repo.InitTestDb()
	if err := service.SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	config.AppConfig.BotUsername = "test_bot"
	config.AppConfig.StorageChannelID = -100999

	tg := newFakeTransport()
	uf := &UploadFlow{Sessions: session.NewMemoryStore(), Transport: tg}
	user, err := service.GetOrCreateUser(service.UserIdentity{TelegramID: 7, FirstName: "U"})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	return uf, tg, user
}

func TestUploadFlowSkipEverything(t *testing.T) {
	uf, tg, user := setupUploadTest(t)
	ctx := context.Background()

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !uf.Active(ctx, user) {
		t.Fatal("flow not active after start")
	}

	err := uf.Handle(ctx, user, FileReceived{
		FileID: "F1", FileUniqueID: "u1", Name: "doc.pdf", Kind: "document", Size: 1024,
	})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if len(tg.sentFiles) != 0 {
		t.Fatal("file relayed before commit")
	}

	// no categories configured, the flow jumps straight to source
	for _, ev := range []Event{Skip{}, Skip{}, Skip{}} {
		if err := uf.Handle(ctx, user, ev); err != nil {
			t.Fatalf("skip: %v", err)
		}
	}
	// decline the password
	if err := uf.Handle(ctx, user, PasswordNo{}); err != nil {
		t.Fatalf("password no: %v", err)
	}
	if len(tg.sentFiles) != 1 {
		t.Fatal("file was not relayed to the storage channel at commit")
	}

	if uf.Active(ctx, user) {
		t.Fatal("state not cleared after commit")
	}
	if !tg.sawMessageContaining("https://t.me/test_bot?start=file_") {
		t.Fatal("share link never announced")
	}

	var file model.File
	if err := repo.Db.First(&file).Error; err != nil {
		t.Fatalf("file row: %v", err)
	}
	if file.FileName != "doc.pdf" || file.Password != nil {
		t.Fatalf("unexpected row: %+v", file)
	}
	if file.MessageID == 0 {
		t.Fatal("relay position not recorded")
	}
}

func TestUploadFlowWithCategoryTagsAndPassword(t *testing.T) {
	uf, tg, user := setupUploadTest(t)
	ctx := context.Background()

	category, err := service.CreateCategory("Docs", "", nil)
	if err != nil {
		t.Fatalf("category: %v", err)
	}

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	steps := []Event{
		FileReceived{FileID: "F2", FileUniqueID: "u2", Name: "a.txt", Kind: "document", Size: 10},
		CategoryChosen{ID: category.ID},
		TextInput{Text: "https://example.com"},
		TextInput{Text: "renamed.txt"},
		TextInput{Text: "alpha, beta"},
		PasswordYes{},
		TextInput{Text: "hunter2"},
	}
	for i, ev := range steps {
		if err := uf.Handle(ctx, user, ev); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	var file model.File
	if err := repo.Db.Preload("Tags").First(&file).Error; err != nil {
		t.Fatalf("file row: %v", err)
	}
	if file.FileName != "renamed.txt" {
		t.Fatalf("file name = %q", file.FileName)
	}
	if file.CategoryID == nil || *file.CategoryID != category.ID {
		t.Fatal("category not recorded")
	}
	if file.SourceURL == nil || *file.SourceURL != "https://example.com" {
		t.Fatal("source not recorded")
	}
	if len(file.Tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(file.Tags))
	}
	if file.Password == nil || strings.Contains(*file.Password, "hunter2") {
		t.Fatal("password missing or unhashed")
	}
	_ = tg
}

func TestUploadFlowDenied(t *testing.T) {
	uf, tg, user := setupUploadTest(t)
	ctx := context.Background()

	banned := true
	if err := service.UpdateUserFlags(user.ID, service.UserFlags{IsBanned: &banned}); err != nil {
		t.Fatalf("ban: %v", err)
	}
	user.IsBanned = true

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	if uf.Active(ctx, user) {
		t.Fatal("denied user got an open flow")
	}
	if tg.lastMessage() == "" {
		t.Fatal("denial not communicated")
	}
}

func TestUploadFlowCancelMidway(t *testing.T) {
	uf, tg, user := setupUploadTest(t)
	ctx := context.Background()

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := uf.Handle(ctx, user, FileReceived{
		FileID: "F3", FileUniqueID: "u3", Name: "c.txt", Kind: "document", Size: 5,
	}); err != nil {
		t.Fatalf("file: %v", err)
	}
	if err := uf.Handle(ctx, user, Cancel{}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if uf.Active(ctx, user) {
		t.Fatal("state survived cancel")
	}
	var count int64
	repo.Db.Model(&model.File{}).Count(&count)
	if count != 0 {
		t.Fatalf("cancel left %d file rows", count)
	}
	if len(tg.sentFiles) != 0 {
		t.Fatal("cancelled upload left a copy in the storage channel")
	}
}

func TestUploadFlowRejectsOversizedFile(t *testing.T) {
	uf, _, user := setupUploadTest(t)
	ctx := context.Background()

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	huge := service.MaxFileSizeBytes() + 1
	if err := uf.Handle(ctx, user, FileReceived{
		FileID: "F4", FileUniqueID: "u4", Name: "big.bin", Kind: "document", Size: huge,
	}); err != nil {
		t.Fatalf("file: %v", err)
	}
	// still waiting for an acceptable file
	if !uf.Active(ctx, user) {
		t.Fatal("flow aborted instead of re-prompting")
	}
	var st UploadState
	ok, _ := uf.Sessions.Get(ctx, user.TelegramID, uploadFlowName, &st)
	if !ok || st.Step != stepAwaitingFile {
		t.Fatalf("step = %q, want %q", st.Step, stepAwaitingFile)
	}
}

func TestUploadFlowAcceptsFileAtSizeLimit(t *testing.T) {
	uf, _, user := setupUploadTest(t)
	ctx := context.Background()

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := uf.Handle(ctx, user, FileReceived{
		FileID: "F5", FileUniqueID: "u5", Name: "edge.bin", Kind: "document",
		Size: service.MaxFileSizeBytes(),
	}); err != nil {
		t.Fatalf("file: %v", err)
	}
	var st UploadState
	ok, _ := uf.Sessions.Get(ctx, user.TelegramID, uploadFlowName, &st)
	if !ok || st.Step == stepAwaitingFile {
		t.Fatalf("step = %q, a file exactly at the limit should advance", st.Step)
	}
}

func TestUploadFlowSubscriptionGate(t *testing.T) {
	uf, tg, user := setupUploadTest(t)
	ctx := context.Background()

	if _, err := service.AddChannel(-500, "News", "https://t.me/news", true); err != nil {
		t.Fatalf("channel: %v", err)
	}

	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("start: %v", err)
	}
	if uf.Active(ctx, user) {
		t.Fatal("unsubscribed user got an open flow")
	}

	tg.members[-500] = "member"
	if err := uf.Start(ctx, user); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if !uf.Active(ctx, user) {
		t.Fatal("subscribed user denied")
	}
}
