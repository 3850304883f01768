package api

import (
	authDelivery "moments-backend/internal/auth/delivery"
	authRepo "moments-backend/internal/auth/repository"
	authUsecase "moments-backend/internal/auth/usecase"
	momentDelivery "moments-backend/internal/moment/delivery"
	momentRepo "moments-backend/internal/moment/repository"
	"moments-backend/internal/moment/store"
	"moments-backend/internal/realtime"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase   authUsecase.AuthUsecase
	authHandler   *authDelivery.AuthHandler
	momentHandler *momentDelivery.MomentHandler
}

// NewHandler wires the delivery handlers for the HTTP surface
func NewHandler(
	authUc authUsecase.AuthUsecase,
	fcmRepo authRepo.FCMTokenRepository,
	manager *store.Manager,
	notificationRepo momentRepo.NotificationRepository,
	realtimeService *realtime.Service,
) *Handler {
	return &Handler{
		authUsecase:   authUc,
		authHandler:   authDelivery.NewAuthHandler(authUc, fcmRepo),
		momentHandler: momentDelivery.NewMomentHandler(manager, notificationRepo, realtimeService),
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.momentHandler)

	return r.Run(addr)
}
