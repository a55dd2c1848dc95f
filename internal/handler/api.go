package handler

import (
	"TeleVault/config"
	"TeleVault/internal/dto"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/internal/storage"
	"TeleVault/model"
	"TeleVault/utils"
	"bytes"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const ctxUserKey = "api_user"

// APIHandler serves the key-authenticated REST surface.
type APIHandler struct {
	Store storage.Store

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewAPIHandler(store storage.Store) *APIHandler {
	return &APIHandler{
		Store:    store,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (h *APIHandler) limiterFor(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(config.AppConfig.APIRate), config.AppConfig.APIBurst)
	h.limiters[key] = l
	return l
}

// AuthMiddleware resolves the X-API-Key header, throttles per key, and
// records the call after the handler ran.
func (h *APIHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		user, err := service.FindUserByAPIKey(key)
		if err != nil || user.IsBanned {
			utils.Fail(c, http.StatusUnauthorized, "invalid api key")
			c.Abort()
			h.logCall(c, nil)
			return
		}
		if !h.limiterFor(key).Allow() {
			utils.Fail(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			h.logCall(c, user)
			return
		}
		c.Set(ctxUserKey, user)
		c.Next()
		h.logCall(c, user)
	}
}

func (h *APIHandler) logCall(c *gin.Context, user *model.User) {
	entry := model.ApiLog{
		Endpoint:   c.FullPath(),
		Method:     c.Request.Method,
		StatusCode: c.Writer.Status(),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if entry.Endpoint == "" {
		entry.Endpoint = c.Request.URL.Path
	}
	if user != nil {
		entry.UserID = &user.ID
	}
	if err := repo.Db.Create(&entry).Error; err != nil {
		log.Printf("api: log write failed: %v", err)
	}
}

func apiUser(c *gin.Context) *model.User {
	return c.MustGet(ctxUserKey).(*model.User)
}

// Me returns the calling user.
func (h *APIHandler) Me(c *gin.Context) {
	utils.Success(c, apiUser(c))
}

// ListFiles returns a filtered page of files. Non-staff callers only ever
// see their own uploads.
func (h *APIHandler) ListFiles(c *gin.Context) {
	user := apiUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := service.FileFilter{
		FileType: c.Query("type"),
		Query:    c.Query("q"),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}
	if raw := c.Query("category_id"); raw != "" {
		if id, err := utils.ParseID(raw); err == nil {
			filter.CategoryID = &id
		}
	}
	if raw := c.Query("format_id"); raw != "" {
		if id, err := utils.ParseID(raw); err == nil {
			filter.FormatID = &id
		}
	}
	if !user.IsAdmin && !user.IsModerator {
		filter.OwnerID = &user.ID
	}

	files, total, err := service.ListFiles(filter)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, dto.Page{
		Items:    dto.NewFileViews(files),
		Total:    total,
		Page:     page,
		PageSize: filter.Limit,
	})
}

// GetFile returns one file's metadata. Files the caller cannot manage are
// forbidden rather than hidden.
func (h *APIHandler) GetFile(c *gin.Context) {
	user := apiUser(c)
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	file, err := service.GetFileByID(id)
	if err != nil {
		utils.Fail(c, http.StatusNotFound, "file not found")
		return
	}
	if !service.CanManageFile(user, file) {
		utils.Fail(c, http.StatusForbidden, "forbidden")
		return
	}
	// a details read is a view; downloads are counted only on delivery
	if err := service.RegisterView(file.ID); err != nil {
		log.Printf("api: view count for file %d failed: %v", file.ID, err)
	}
	utils.Success(c, dto.NewFileView(file))
}

// DeleteFile removes a file the caller manages.
func (h *APIHandler) DeleteFile(c *gin.Context) {
	user := apiUser(c)
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	file, err := service.GetFileByID(id)
	if err != nil {
		utils.Fail(c, http.StatusNotFound, "file not found")
		return
	}
	if !service.CanManageFile(user, file) {
		utils.Fail(c, http.StatusForbidden, "forbidden")
		return
	}
	if file.StorageObject != "" && h.Store != nil {
		if err := h.Store.RemoveObject(c.Request.Context(), file.StorageObject); err != nil {
			log.Printf("api: object remove for file %d failed: %v", file.ID, err)
		}
	}
	if err := service.DeleteFile(id); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	utils.Success(c, nil)
}

// Upload accepts a multipart file, stores the bytes in object storage and
// creates the share record. With a password and encrypt=true the object is
// sealed client-side of the store; the bytes at rest are ciphertext.
func (h *APIHandler) Upload(c *gin.Context) {
	user := apiUser(c)
	if h.Store == nil {
		utils.Fail(c, http.StatusServiceUnavailable, "object storage not configured")
		return
	}
	if !service.CanUpload(user) {
		utils.Fail(c, http.StatusForbidden, "uploads not allowed")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "file field required")
		return
	}
	maxBytes := service.MaxFileSizeBytes()
	if fh.Size > maxBytes {
		utils.Fail(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	password := c.PostForm("password")
	encrypt := c.PostForm("encrypt") == "true"
	if encrypt && password == "" {
		utils.Fail(c, http.StatusBadRequest, "encrypt requires a password")
		return
	}

	src, err := fh.Open()
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "unreadable file")
		return
	}
	defer src.Close()

	name := utils.SanitizeFilename(fh.Filename)
	object := uuid.NewString() + "_" + name

	var reader io.Reader = src
	size := fh.Size
	if encrypt {
		data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
		if err != nil || int64(len(data)) > maxBytes {
			utils.Fail(c, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		sealed, err := utils.EncryptBytes(data, password)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "encrypt failed")
			return
		}
		reader = bytes.NewReader(sealed)
		size = int64(len(sealed))
	}

	contentType := fh.Header.Get("Content-Type")
	err = h.Store.PutObject(c.Request.Context(), object, reader, size, storage.PutOptions{ContentType: contentType})
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "store failed")
		return
	}

	draft := service.UploadDraft{
		StorageObject: object,
		FileName:      name,
		FileSize:      fh.Size,
		FileType:      fileTypeFromName(name),
		TagNames:      service.ParseTagInput(c.PostForm("tags")),
		IsEncrypted:   encrypt,
	}
	if password != "" {
		draft.Password = &password
	}
	if raw := c.PostForm("category_id"); raw != "" {
		if id, err := utils.ParseID(raw); err == nil {
			draft.CategoryID = &id
		}
	}
	if raw := c.PostForm("format_id"); raw != "" {
		if id, err := utils.ParseID(raw); err == nil {
			draft.FormatID = &id
		}
	}
	if src := c.PostForm("source_url"); src != "" {
		draft.SourceURL = &src
	}

	file, err := service.CommitUpload(user, draft)
	if err != nil {
		if rmErr := h.Store.RemoveObject(c.Request.Context(), object); rmErr != nil {
			log.Printf("api: orphan object %s cleanup failed: %v", object, rmErr)
		}
		utils.Fail(c, http.StatusInternalServerError, "upload failed")
		return
	}
	utils.Success(c, dto.NewFileView(file))
}

// RateFile folds a 1-5 star rating into the file's aggregate.
func (h *APIHandler) RateFile(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Stars < 1 || req.Stars > 5 {
		utils.Fail(c, http.StatusBadRequest, "stars must be 1-5")
		return
	}
	if _, err := service.GetFileByID(id); err != nil {
		utils.Fail(c, http.StatusNotFound, "file not found")
		return
	}
	if err := service.RateFile(id, req.Stars); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "rate failed")
		return
	}
	utils.Success(c, nil)
}

// ListNotifications pages the caller's notifications, newest first.
func (h *APIHandler) ListNotifications(c *gin.Context) {
	user := apiUser(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	notifications, err := service.UserNotifications(user.ID, (page-1)*pageSize, pageSize)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, notifications)
}

// ReadNotification marks one of the caller's notifications as read.
func (h *APIHandler) ReadNotification(c *gin.Context) {
	user := apiUser(c)
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.MarkNotificationRead(user.ID, id); err != nil {
		utils.Fail(c, http.StatusNotFound, "notification not found")
		return
	}
	utils.Success(c, nil)
}

// ListCategories returns all categories.
func (h *APIHandler) ListCategories(c *gin.Context) {
	categories, err := service.AllCategories()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, categories)
}

// ListFormats returns all formats.
func (h *APIHandler) ListFormats(c *gin.Context) {
	formats, err := service.AllFormats()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, formats)
}

// ListTags returns all tags.
func (h *APIHandler) ListTags(c *gin.Context) {
	tags, err := service.ListTags()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, tags)
}

func fileTypeFromName(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp":
		return "photo"
	case "mp4", "mkv", "mov", "avi":
		return "video"
	case "mp3", "flac", "wav", "ogg", "m4a":
		return "audio"
	default:
		return "document"
	}
}
