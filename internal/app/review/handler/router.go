package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reviewflow/pkg/logger"
	"reviewflow/pkg/metrics"
)

func SetupRoutes(
	reviewHandler *ReviewHandler,
	submissionHandler *SubmissionHandler,
	profileHandler *ProfileHandler,
	configHandler *ConfigHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("reviewflow"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "reviewflow",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	submissions := router.Group("/submissions")
	submissions.Use(authMiddleware.Authenticate())
	{
		submissions.POST("/", submissionHandler.CreateSubmission)
		submissions.GET("/", submissionHandler.ListPending)
		submissions.GET("/:submission_id", submissionHandler.GetSubmission)
		submissions.GET("/:submission_id/reviews", submissionHandler.ListSubmissionReviews)
	}

	sessions := router.Group("/sessions")
	sessions.Use(authMiddleware.Authenticate())
	{
		sessions.GET("/:session_id", submissionHandler.GetReviewSession)
	}

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.POST("/", reviewHandler.BeginReview)
		reviews.GET("/:submission_id", reviewHandler.GetState)
		reviews.POST("/:submission_id/score", reviewHandler.SetScore)
		reviews.POST("/:submission_id/note", reviewHandler.AddNote)
		reviews.POST("/:submission_id/advance", reviewHandler.Advance)
		reviews.POST("/:submission_id/retreat", reviewHandler.Retreat)
		reviews.GET("/:submission_id/summary", reviewHandler.GetSummary)
		reviews.POST("/:submission_id/publish", reviewHandler.Publish)
		reviews.DELETE("/:submission_id", reviewHandler.Cancel)
	}

	profiles := router.Group("/profiles")
	profiles.Use(authMiddleware.Authenticate())
	{
		profiles.GET("/:user_id", profileHandler.GetProfile)
		profiles.GET("/:user_id/reviews", profileHandler.GetReviewerHistory)
	}

	leaderboard := router.Group("/leaderboard")
	leaderboard.Use(authMiddleware.Authenticate())
	{
		leaderboard.GET("/", profileHandler.GetLeaderboard)
	}

	config := router.Group("/config")
	config.Use(authMiddleware.Authenticate())
	{
		config.GET("/", configHandler.GetConfig)
		config.PUT("/", configHandler.UpdateConfig)
	}

	return router
}
