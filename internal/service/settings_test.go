package service

import (
	"TeleVault/internal/repo"
	"testing"
)

func TestSeedDefaultSettings(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// second call must not duplicate rows
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	settings, err := ListSettings()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(settings) != 7 {
		t.Fatalf("got %d settings, want 7", len(settings))
	}
}

func TestSettingReadsAreFresh(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !GetSettingBool(SettingAllowPublicUpload, false) {
		t.Fatal("default allow_public_upload should be true")
	}
	if err := UpdateSetting(SettingAllowPublicUpload, "false"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if GetSettingBool(SettingAllowPublicUpload, true) {
		t.Fatal("updated value not visible on next read")
	}
}

func TestUpdateUnknownSetting(t *testing.T) {
	repo.InitTestDb()
	if err := UpdateSetting("no_such_key", "x"); err == nil {
		t.Fatal("updating an unknown key should fail")
	}
}

func TestMaxFileSizeBytes(t *testing.T) {
	repo.InitTestDb()
	if err := SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := MaxFileSizeBytes(); got != 50*1024*1024 {
		t.Fatalf("MaxFileSizeBytes() = %d, want %d", got, 50*1024*1024)
	}
	if err := UpdateSetting(SettingMaxFileSize, "10"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := MaxFileSizeBytes(); got != 10*1024*1024 {
		t.Fatalf("MaxFileSizeBytes() = %d after update", got)
	}
}
