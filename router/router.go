package router

import (
	"TeleVault/internal/handler"
	"TeleVault/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds the REST API and console routes.
func InitRouter(api *handler.APIHandler, console *handler.ConsoleHandler) *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	v1 := r.Group("/api/v1")
	v1.Use(api.AuthMiddleware())
	{
		v1.GET("/users/me", api.Me)

		v1.GET("/files", api.ListFiles)
		v1.GET("/files/:id", api.GetFile)
		v1.DELETE("/files/:id", api.DeleteFile)
		v1.POST("/files/:id/rate", api.RateFile)
		v1.POST("/upload", api.Upload)

		v1.GET("/notifications", api.ListNotifications)
		v1.POST("/notifications/:id/read", api.ReadNotification)

		v1.GET("/categories", api.ListCategories)
		v1.GET("/formats", api.ListFormats)
		v1.GET("/tags", api.ListTags)
	}

	c := r.Group("/console")
	{
		c.POST("/login", console.Login)

		auth := c.Group("")
		auth.Use(utils.ConsoleAuthMiddleware())
		{
			auth.GET("/dashboard", console.Dashboard)

			auth.GET("/users", console.ListUsers)
			auth.PATCH("/users/:id", console.UpdateUser)
			auth.POST("/users/:id/apikey", console.IssueAPIKey)

			auth.GET("/files", console.ListFiles)
			auth.DELETE("/files/:id", console.DeleteFile)

			auth.GET("/categories", console.ListCategories)
			auth.POST("/categories", console.CreateCategory)
			auth.PATCH("/categories/:id", console.UpdateCategory)
			auth.DELETE("/categories/:id", console.DeleteCategory)

			auth.GET("/formats", console.ListFormats)
			auth.POST("/formats", console.CreateFormat)
			auth.PATCH("/formats/:id", console.UpdateFormat)
			auth.DELETE("/formats/:id", console.DeleteFormat)

			auth.GET("/channels", console.ListChannels)
			auth.POST("/channels", console.CreateChannel)
			auth.DELETE("/channels/:id", console.DeleteChannel)

			auth.GET("/settings", console.ListSettings)
			auth.PUT("/settings/:key", console.UpdateSetting)

			auth.GET("/backups", console.ListBackups)
			auth.POST("/backups", console.CreateBackup)
			auth.POST("/backups/:id/restore", console.RestoreBackup)
			auth.DELETE("/backups/:id", console.DeleteBackup)

			auth.POST("/broadcast", console.Broadcast)
			auth.GET("/apilogs", console.ListApiLogs)
		}
	}

	return r
}
