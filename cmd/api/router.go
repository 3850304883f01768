package api

import (
	"net/http"

	authDelivery "moments-backend/internal/auth/delivery"
	authUsecase "moments-backend/internal/auth/usecase"
	momentDelivery "moments-backend/internal/moment/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, authHandler *authDelivery.AuthHandler, momentHandler *momentDelivery.MomentHandler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/logout-all", authDelivery.AuthMiddleware(authUc), authHandler.LogoutAll)
			auth.GET("/me", authDelivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authDelivery.AuthMiddleware(authUc))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.POST("/unregister", authHandler.UnregisterFCMToken)
		}

		// Moment routes (protected)
		moments := api.Group("/moments")
		moments.Use(authDelivery.AuthMiddleware(authUc))
		{
			moments.GET("", momentHandler.ListMoments)
			moments.POST("", momentHandler.CreateMoment)
			moments.GET("/search", momentHandler.SearchMoments)
			moments.PUT("/:id", momentHandler.UpdateMoment)
			moments.DELETE("/:id", momentHandler.DeleteMoment)
			moments.GET("/:id/countdown", momentHandler.MomentCountdown)
			moments.POST("/:id/share", momentHandler.ShareMoment)
			moments.POST("/:id/respond", momentHandler.RespondToInvitation)
			moments.PUT("/:id/reflection", momentHandler.UpdateReflection)

			moments.POST("/:id/tasks", momentHandler.CreateTask)
			moments.PUT("/:id/tasks/:taskId", momentHandler.UpdateTask)
			moments.POST("/:id/tasks/:taskId/toggle", momentHandler.ToggleTask)
			moments.DELETE("/:id/tasks/:taskId", momentHandler.DeleteTask)

			moments.POST("/:id/comments", momentHandler.CreateComment)
			moments.DELETE("/:id/comments/:commentId", momentHandler.DeleteComment)
		}

		// Task list views (protected)
		tasks := api.Group("/tasks")
		tasks.Use(authDelivery.AuthMiddleware(authUc))
		{
			tasks.GET("", momentHandler.AllTasks)
			tasks.GET("/active", momentHandler.ActiveTasks)
			tasks.GET("/flat", momentHandler.FlatTasks)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(authDelivery.AuthMiddleware(authUc))
		{
			notifications.GET("", momentHandler.ListNotifications)
			notifications.PATCH("/:id/read", momentHandler.MarkNotificationRead)
		}

		// Store reset, typically called on sign-out (protected)
		api.POST("/store/reset", authDelivery.AuthMiddleware(authUc), momentHandler.Reset)
	}
}
