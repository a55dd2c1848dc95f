package handler

import (
	"TeleVault/config"
	"TeleVault/internal/dto"
	"TeleVault/internal/repo"
	"TeleVault/internal/service"
	"TeleVault/model"
	"TeleVault/utils"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ConsoleHandler serves the JWT-authenticated admin console API.
type ConsoleHandler struct {
	Sender service.Sender
	Queue  service.Publisher
}

func NewConsoleHandler(sender service.Sender, queue service.Publisher) *ConsoleHandler {
	return &ConsoleHandler{Sender: sender, Queue: queue}
}

// Login exchanges the configured console credentials for a session token.
func (h *ConsoleHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "username and password required")
		return
	}
	if config.AppConfig.ConsolePass == "" ||
		!utils.SecureCompare(req.Username, config.AppConfig.ConsoleUser) ||
		!utils.SecureCompare(req.Password, config.AppConfig.ConsolePass) {
		utils.Fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := utils.GenerateConsoleToken(req.Username)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "token error")
		return
	}
	utils.Success(c, dto.LoginResponse{Token: token})
}

// Dashboard returns the headline stats plus the activity series.
func (h *ConsoleHandler) Dashboard(c *gin.Context) {
	totals, err := service.GetTotals()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "stats failed")
		return
	}
	growth, err := service.UserGrowth(30)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "stats failed")
		return
	}
	uploads, err := service.UploadsPerDay(30)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "stats failed")
		return
	}
	top, err := service.TopFiles(10)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "stats failed")
		return
	}
	utils.Success(c, gin.H{
		"totals":      totals,
		"user_growth": growth,
		"uploads":     uploads,
		"top_files":   dto.NewFileViews(top),
	})
}

// ListUsers pages all users.
func (h *ConsoleHandler) ListUsers(c *gin.Context) {
	page, pageSize := pageParams(c)
	users, total, err := service.ListUsers((page-1)*pageSize, pageSize)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, dto.Page{Items: users, Total: total, Page: page, PageSize: pageSize})
}

// UpdateUser applies flag changes to a user.
func (h *ConsoleHandler) UpdateUser(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	var flags service.UserFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	if err := service.UpdateUserFlags(id, flags); err != nil {
		utils.Fail(c, http.StatusNotFound, "user not found")
		return
	}
	utils.Success(c, nil)
}

// IssueAPIKey rotates a user's REST credential.
func (h *ConsoleHandler) IssueAPIKey(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	key, err := service.IssueAPIKey(id)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "issue failed")
		return
	}
	utils.Success(c, gin.H{"api_key": key})
}

// ListFiles pages all files without owner scoping.
func (h *ConsoleHandler) ListFiles(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := service.FileFilter{
		Query:  c.Query("q"),
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}
	files, total, err := service.ListFiles(filter)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, dto.Page{Items: dto.NewFileViews(files), Total: total, Page: page, PageSize: pageSize})
}

// DeleteFile removes any file.
func (h *ConsoleHandler) DeleteFile(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.DeleteFile(id); err != nil {
		utils.Fail(c, http.StatusNotFound, "file not found")
		return
	}
	utils.Success(c, nil)
}

// ListCategories returns every category.
func (h *ConsoleHandler) ListCategories(c *gin.Context) {
	categories, err := service.AllCategories()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, categories)
}

// CreateCategory adds a category.
func (h *ConsoleHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.NameEn == "" {
		utils.Fail(c, http.StatusBadRequest, "name_en required")
		return
	}
	category, err := service.CreateCategory(req.NameEn, req.NameAr, req.ParentID)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "create failed")
		return
	}
	utils.Success(c, category)
}

// UpdateCategory changes a category.
func (h *ConsoleHandler) UpdateCategory(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	if err := service.UpdateCategory(id, req.NameEn, req.NameAr, req.IsActive); err != nil {
		utils.Fail(c, http.StatusNotFound, "category not found")
		return
	}
	utils.Success(c, nil)
}

// DeleteCategory removes a category.
func (h *ConsoleHandler) DeleteCategory(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.DeleteCategory(id); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	utils.Success(c, nil)
}

// ListFormats returns every format.
func (h *ConsoleHandler) ListFormats(c *gin.Context) {
	formats, err := service.AllFormats()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, formats)
}

// CreateFormat adds a format.
func (h *ConsoleHandler) CreateFormat(c *gin.Context) {
	var req dto.FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		utils.Fail(c, http.StatusBadRequest, "name required")
		return
	}
	format, err := service.CreateFormat(req.Name, req.DescriptionEn, req.DescriptionAr, req.CategoryID)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "create failed")
		return
	}
	utils.Success(c, format)
}

// UpdateFormat changes a format.
func (h *ConsoleHandler) UpdateFormat(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req dto.FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	if err := service.UpdateFormat(id, req.Name, req.DescriptionEn, req.DescriptionAr, req.IsActive); err != nil {
		utils.Fail(c, http.StatusNotFound, "format not found")
		return
	}
	utils.Success(c, nil)
}

// DeleteFormat removes a format.
func (h *ConsoleHandler) DeleteFormat(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.DeleteFormat(id); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	utils.Success(c, nil)
}

// ListChannels returns the subscription channels.
func (h *ConsoleHandler) ListChannels(c *gin.Context) {
	channels, err := service.ListChannels()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, channels)
}

// CreateChannel registers a subscription channel.
func (h *ConsoleHandler) CreateChannel(c *gin.Context) {
	var req dto.ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid body")
		return
	}
	required := true
	if req.IsRequired != nil {
		required = *req.IsRequired
	}
	channel, err := service.AddChannel(req.ChannelID, req.ChannelName, req.ChannelLink, required)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "create failed")
		return
	}
	utils.Success(c, channel)
}

// DeleteChannel removes a subscription channel.
func (h *ConsoleHandler) DeleteChannel(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.RemoveChannel(id); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	utils.Success(c, nil)
}

// ListSettings returns all settings rows.
func (h *ConsoleHandler) ListSettings(c *gin.Context) {
	settings, err := service.ListSettings()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, settings)
}

// UpdateSetting changes one setting; it takes effect on the next gated
// action, no restart involved.
func (h *ConsoleHandler) UpdateSetting(c *gin.Context) {
	var req dto.SettingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "value required")
		return
	}
	if err := service.UpdateSetting(c.Param("key"), req.Value); err != nil {
		utils.Fail(c, http.StatusNotFound, "setting not found")
		return
	}
	utils.Success(c, nil)
}

// ListBackups returns all snapshots.
func (h *ConsoleHandler) ListBackups(c *gin.Context) {
	backups, err := service.ListBackups()
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, backups)
}

// CreateBackup takes a manual snapshot.
func (h *ConsoleHandler) CreateBackup(c *gin.Context) {
	backup, err := service.CreateBackup(c.Request.Context(), h.Sender, h.Queue, false)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "backup failed")
		return
	}
	utils.Success(c, backup)
}

// RestoreBackup swaps a snapshot in; the process must restart after.
func (h *ConsoleHandler) RestoreBackup(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.RestoreBackup(id); err != nil {
		utils.Fail(c, http.StatusInternalServerError, "restore failed")
		return
	}
	utils.Success(c, gin.H{"note": "restart required"})
}

// DeleteBackup removes a snapshot.
func (h *ConsoleHandler) DeleteBackup(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid id")
		return
	}
	if err := service.DeleteBackup(id); err != nil {
		utils.Fail(c, http.StatusNotFound, "backup not found")
		return
	}
	utils.Success(c, nil)
}

// Broadcast queues an announcement to users.
func (h *ConsoleHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "message required")
		return
	}
	sent, err := service.Broadcast(c.Request.Context(), h.Sender, h.Queue, req.Message, req.ActiveDays)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "broadcast failed")
		return
	}
	utils.Success(c, gin.H{"queued": sent})
}

// ListApiLogs pages the REST call log, newest first.
func (h *ConsoleHandler) ListApiLogs(c *gin.Context) {
	page, pageSize := pageParams(c)
	var logs []model.ApiLog
	var total int64
	if err := repo.Db.Model(&model.ApiLog{}).Count(&total).Error; err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	err := repo.Db.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, "list failed")
		return
	}
	utils.Success(c, dto.Page{Items: logs, Total: total, Page: page, PageSize: pageSize})
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
