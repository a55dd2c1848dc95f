package handler

import (
	"TeleVault/config"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/internal/storage"
	"TeleVault/model"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupAPITest(t *testing.T) (*gin.Engine, string, *model.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo.InitTestDb()
	if err := service.SeedDefaultSettings(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	config.AppConfig.BotUsername = "test_bot"
	config.AppConfig.APIRate = 1000
	config.AppConfig.APIBurst = 1000
	config.AppConfig.JWTSecret = "test-secret"

	user, err := service.GetOrCreateUser(service.UserIdentity{TelegramID: 1, FirstName: "Api"})
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	key, err := service.IssueAPIKey(user.ID)
	if err != nil {
		t.Fatalf("key: %v", err)
	}

	api := NewAPIHandler(storage.NewMemoryStore())
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(api.AuthMiddleware())
	v1.GET("/users/me", api.Me)
	v1.GET("/files", api.ListFiles)
	v1.GET("/files/:id", api.GetFile)
	v1.DELETE("/files/:id", api.DeleteFile)
	v1.POST("/upload", api.Upload)
	v1.POST("/files/:id/rate", api.RateFile)
	v1.GET("/notifications", api.ListNotifications)
	v1.POST("/notifications/:id/read", api.ReadNotification)
	return r, key, user
}

func doRequest(r *gin.Engine, method, path, key string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIRequiresKey(t *testing.T) {
	r, _, _ := setupAPITest(t)
	if w := doRequest(r, http.MethodGet, "/api/v1/users/me", "", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no key: status %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/v1/users/me", "api_bogus", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad key: status %d", w.Code)
	}
}

func TestAPIMe(t *testing.T) {
	r, key, _ := setupAPITest(t)
	w := doRequest(r, http.MethodGet, "/api/v1/users/me", key, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data model.User `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.TelegramID != 1 {
		t.Fatalf("wrong user: %+v", resp.Data)
	}
}

func TestAPIFileAccessControl(t *testing.T) {
	r, key, _ := setupAPITest(t)

	other, err := service.GetOrCreateUser(service.UserIdentity{TelegramID: 2})
	if err != nil {
		t.Fatalf("other: %v", err)
	}
	foreign, err := service.CommitUpload(other, service.UploadDraft{
		TelegramFileID: "F", FileUniqueID: "f", MessageID: 1,
		FileName: "foreign.txt", FileSize: 1, FileType: "document",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if w := doRequest(r, http.MethodGet, "/api/v1/files/999999", key, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing file: status %d", w.Code)
	}
	path := "/api/v1/files/" + itoa(foreign.ID)
	if w := doRequest(r, http.MethodGet, path, key, nil, ""); w.Code != http.StatusForbidden {
		t.Fatalf("foreign file read: status %d", w.Code)
	}
	if w := doRequest(r, http.MethodDelete, path, key, nil, ""); w.Code != http.StatusForbidden {
		t.Fatalf("foreign file delete: status %d", w.Code)
	}
}

func TestAPIListScopedToOwner(t *testing.T) {
	r, key, user := setupAPITest(t)

	other, _ := service.GetOrCreateUser(service.UserIdentity{TelegramID: 2})
	for i, owner := range []*model.User{user, other} {
		if _, err := service.CommitUpload(owner, service.UploadDraft{
			TelegramFileID: "F", FileUniqueID: "f", MessageID: i + 1,
			FileName: "x.txt", FileSize: 1, FileType: "document",
		}); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	w := doRequest(r, http.MethodGet, "/api/v1/files", key, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 1 {
		t.Fatalf("total = %d, want 1 (owner scoped)", resp.Data.Total)
	}
}

func TestAPIUpload(t *testing.T) {
	r, key, user := setupAPITest(t)

	body, contentType := multipartFile(t, "report.pdf", []byte("pdf bytes"), map[string]string{
		"tags": "work, q3",
	})
	w := doRequest(r, http.MethodPost, "/api/v1/upload", key, body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	var file model.File
	if err := repo.Db.Preload("Tags").First(&file).Error; err != nil {
		t.Fatalf("file row: %v", err)
	}
	if file.OwnerID != user.ID || file.StorageObject == "" {
		t.Fatalf("unexpected row: %+v", file)
	}
	if len(file.Tags) != 2 {
		t.Fatalf("got %d tags, want 2", len(file.Tags))
	}
}

func TestAPIUploadTooLarge(t *testing.T) {
	r, key, _ := setupAPITest(t)
	if err := service.UpdateSetting(service.SettingMaxFileSize, "0"); err != nil {
		t.Fatalf("setting: %v", err)
	}
	body, contentType := multipartFile(t, "big.bin", []byte("x"), nil)
	w := doRequest(r, http.MethodPost, "/api/v1/upload", key, body, contentType)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d, want 413", w.Code)
	}
}

func TestAPIUploadEncryptNeedsPassword(t *testing.T) {
	r, key, _ := setupAPITest(t)
	body, contentType := multipartFile(t, "sec.bin", []byte("data"), map[string]string{
		"encrypt": "true",
	})
	w := doRequest(r, http.MethodPost, "/api/v1/upload", key, body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestAPIRateLimit(t *testing.T) {
	r, key, _ := setupAPITest(t)
	config.AppConfig.APIRate = 0.0001
	config.AppConfig.APIBurst = 1

	if w := doRequest(r, http.MethodGet, "/api/v1/users/me", key, nil, ""); w.Code != http.StatusOK {
		t.Fatalf("first call: status %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/v1/users/me", key, nil, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second call: status %d, want 429", w.Code)
	}
}

func TestAPICallsAreLogged(t *testing.T) {
	r, key, _ := setupAPITest(t)
	doRequest(r, http.MethodGet, "/api/v1/users/me", key, nil, "")
	doRequest(r, http.MethodGet, "/api/v1/users/me", "", nil, "")

	var logs []model.ApiLog
	if err := repo.Db.Find(&logs).Error; err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d log rows, want 2", len(logs))
	}
	if logs[0].UserID == nil {
		t.Fatal("authenticated call not attributed")
	}
	if logs[1].UserID != nil || logs[1].StatusCode != http.StatusUnauthorized {
		t.Fatalf("rejected call logged wrong: %+v", logs[1])
	}
}

func multipartFile(t *testing.T, name string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func TestAPIRateFile(t *testing.T) {
	r, key, user := setupAPITest(t)
	file, err := service.CommitUpload(user, service.UploadDraft{
		TelegramFileID: "R", FileUniqueID: "r", MessageID: 7,
		FileName: "rated.pdf", FileSize: 5, FileType: "document",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	path := "/api/v1/files/" + strconv.FormatUint(file.ID, 10) + "/rate"

	body := bytes.NewBufferString(`{"stars":6}`)
	if w := doRequest(r, http.MethodPost, path, key, body, "application/json"); w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range stars: status %d", w.Code)
	}

	body = bytes.NewBufferString(`{"stars":4}`)
	if w := doRequest(r, http.MethodPost, path, key, body, "application/json"); w.Code != http.StatusOK {
		t.Fatalf("rate: status %d", w.Code)
	}
	body = bytes.NewBufferString(`{"stars":2}`)
	if w := doRequest(r, http.MethodPost, path, key, body, "application/json"); w.Code != http.StatusOK {
		t.Fatalf("second rate: status %d", w.Code)
	}

	got, err := service.GetFileByID(file.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.RatingSum != 6 || got.RatingCount != 2 {
		t.Fatalf("aggregate = %d/%d, want 6/2", got.RatingSum, got.RatingCount)
	}
}

func TestAPINotifications(t *testing.T) {
	r, key, user := setupAPITest(t)
	n := model.Notification{UserID: user.ID, Message: "your file was downloaded", Type: "download"}
	if err := repo.Db.Create(&n).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/notifications", key, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status %d", w.Code)
	}
	var resp struct {
		Data []model.Notification `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].IsRead {
		t.Fatalf("got %d notifications, want 1 unread", len(resp.Data))
	}

	path := "/api/v1/notifications/" + strconv.FormatUint(n.ID, 10) + "/read"
	if w := doRequest(r, http.MethodPost, path, key, nil, ""); w.Code != http.StatusOK {
		t.Fatalf("mark read: status %d", w.Code)
	}
	if w := doRequest(r, http.MethodPost, "/api/v1/notifications/999/read", key, nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: status %d", w.Code)
	}

	list, err := service.UserNotifications(user.ID, 0, 10)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(list) != 1 || !list[0].IsRead || list[0].ReadAt == nil {
		t.Fatal("notification not marked read")
	}
}

func TestAPIGetFileCountsView(t *testing.T) {
	r, key, user := setupAPITest(t)
	file, err := service.CommitUpload(user, service.UploadDraft{
		TelegramFileID: "V", FileUniqueID: "v", MessageID: 9,
		FileName: "viewed.pdf", FileSize: 3, FileType: "document",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	path := "/api/v1/files/" + itoa(file.ID)

	for i := 0; i < 2; i++ {
		if w := doRequest(r, http.MethodGet, path, key, nil, ""); w.Code != http.StatusOK {
			t.Fatalf("read %d: status %d", i, w.Code)
		}
	}

	got, err := service.GetFileByID(file.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.ViewCount != 2 {
		t.Fatalf("view_count = %d, want 2", got.ViewCount)
	}
	if got.DownloadCount != 0 {
		t.Fatal("details reads must not count as downloads")
	}
}
