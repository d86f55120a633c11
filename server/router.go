package server

import (
	"time"

	"youtube-etl/infrastructure/realtime"
	httpHandler "youtube-etl/interfaces/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	allowOrigins []string,
	healthHandler httpHandler.IHealthHandler,
	pipelineHandler httpHandler.IPipelineHandler,
	runHub *realtime.Hub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	corsConfig := cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	{
		api.GET("/runs", pipelineHandler.ListRuns)
		api.GET("/runs/latest", pipelineHandler.LatestRun)
		api.POST("/runs", pipelineHandler.TriggerRun)
		if runHub != nil {
			api.GET("/runs/events", runHub.Serve)
		}
	}

	return router
}
