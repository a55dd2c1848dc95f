package handler

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/utils"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupConsoleTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo.InitTestDb()
	if err := service.SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	config.AppConfig.ConsoleUser = "admin"
	config.AppConfig.ConsolePass = "hunter2"
	config.AppConfig.JWTSecret = "test-secret"

	h := NewConsoleHandler(nil, nil)
	r := gin.New()
	r.POST("/console/login", h.Login)
	authed := r.Group("/console", utils.ConsoleAuthMiddleware())
	authed.GET("/settings", h.ListSettings)
	authed.PUT("/settings/:key", h.UpdateSetting)
	return r
}

func consoleLogin(t *testing.T, r *gin.Engine, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": user, "password": pass})
	req := httptest.NewRequest(http.MethodPost, "/console/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConsoleLoginRejectsBadCredentials(t *testing.T) {
	r := setupConsoleTest(t)
	if w := consoleLogin(t, r, "admin", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: got %d, want 401", w.Code)
	}
	if w := consoleLogin(t, r, "root", "hunter2"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad username: got %d, want 401", w.Code)
	}
}

func TestConsoleLoginRejectsWhenPasswordUnset(t *testing.T) {
	r := setupConsoleTest(t)
	config.AppConfig.ConsolePass = ""
	if w := consoleLogin(t, r, "admin", "anything"); w.Code != http.StatusUnauthorized {
		t.Fatalf("empty configured password: got %d, want 401", w.Code)
	}
}

func TestConsoleSettingsRoundTrip(t *testing.T) {
	r := setupConsoleTest(t)

	w := consoleLogin(t, r, "admin", "hunter2")
	if w.Code != http.StatusOK {
		t.Fatalf("login: got %d, want 200", w.Code)
	}
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("login returned no token")
	}

	req := httptest.NewRequest(http.MethodGet, "/console/settings", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("settings without token: got %d, want 401", w.Code)
	}

	body, _ := json.Marshal(map[string]string{"value": "false"})
	req = httptest.NewRequest(http.MethodPut, "/console/settings/allow_public_upload", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update setting: got %d, want 200: %s", w.Code, w.Body.String())
	}

	if got := service.GetSetting(service.SettingAllowPublicUpload, "true"); got != "false" {
		t.Fatalf("setting value = %q, want %q", got, "false")
	}
}
