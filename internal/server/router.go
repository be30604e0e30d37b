package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepillar-backend/internal/handlers"
)

type RouterConfig struct {
	AssessmentHandler *handlers.AssessmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// Identity comes from the path: authn/authz live in the gateway in
	// front of this service.
	api := router.Group("/api")
	{
		users := api.Group("/users/:user_id")
		users.POST("/assessments", cfg.AssessmentHandler.Submit)
		users.POST("/assessments/plan", cfg.AssessmentHandler.GeneratePlan)
		users.GET("/assessments", cfg.AssessmentHandler.List)
		users.GET("/assessments/health", cfg.AssessmentHandler.Health)
		users.POST("/assessments/migrate", cfg.AssessmentHandler.Migrate)
	}

	return router
}
