package app

import (
	"exam_prep_backend/docs"
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/middleware"
	"exam_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerExamRoutes(authGroup, c)
	}
}

func (a *App) registerExamRoutes(group *gin.RouterGroup, c *controllers) {
	cycles := group.Group("/cycles/:cycle")
	{
		cycles.GET("/sessions", c.examSession.ListSessions)
		cycles.POST("/review-test", c.reviewExam.Generate)
		cycles.GET("/review-test/progress", c.reviewExam.GetProgress)
		cycles.GET("/review-test/progress/ws", c.reviewExam.StreamProgress)
	}

	group.GET("/exam-sessions/:id", c.examSession.GetSession)
}
