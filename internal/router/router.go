package router

import (
	"github.com/trieu2004160/studytrack-server/internal/cache"
	"github.com/trieu2004160/studytrack-server/internal/catalog"
	"github.com/trieu2004160/studytrack-server/internal/config"
	"github.com/trieu2004160/studytrack-server/internal/handler"
	"github.com/trieu2004160/studytrack-server/internal/middleware"
	"github.com/trieu2004160/studytrack-server/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the Gin engine, middleware and API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, notifier *notify.Scheduler) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.GET("/me", authHandler.GetMe)
	protected.POST("/me/password", authHandler.ChangePassword)

	sessionHandler := handler.NewSessionHandler(db, cfg.Security.EncryptionKey, notifier)
	protected.POST("/sessions", sessionHandler.CreateSession)
	protected.GET("/sessions", sessionHandler.ListSessions)
	protected.PUT("/sessions/:id", sessionHandler.UpdateSession)
	protected.DELETE("/sessions/:id", sessionHandler.DeleteSession)

	snapCache := cache.New(cfg.Cache.Dir, cfg.Security.EncryptionKey)
	courseHandler := handler.NewCourseHandler(db, catalog.New(cfg.Catalog), snapCache)
	protected.POST("/courses", courseHandler.CreateCourse)
	protected.GET("/courses", courseHandler.ListCourses)
	protected.PUT("/courses/:id", courseHandler.UpdateCourse)
	protected.POST("/courses/refresh", courseHandler.RefreshFromCatalog)
	protected.POST("/cache/reset", courseHandler.ResetCache)

	analyticsHandler := handler.NewAnalyticsHandler(db)
	protected.GET("/analytics/weekly", analyticsHandler.GetWeekly)
	protected.GET("/recommendations", analyticsHandler.GetRecommendations)

	exportHandler := handler.NewExportHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
