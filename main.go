package main

import (
	"context"
	"log"

	api "moments-backend/cmd/api"
	authdomain "moments-backend/internal/auth/domain"
	authRepo "moments-backend/internal/auth/repository"
	authUsecase "moments-backend/internal/auth/usecase"
	momentRepo "moments-backend/internal/moment/repository"
	momentScheduler "moments-backend/internal/moment/scheduler"
	"moments-backend/internal/moment/store"
	"moments-backend/internal/realtime"
	"moments-backend/pkg/config"
	"moments-backend/pkg/database"
	"moments-backend/pkg/fcm"
	"moments-backend/pkg/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	if err := momentRepo.AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	momentRepository := momentRepo.NewMomentRepository(db)
	preparationRepository := momentRepo.NewPreparationRepository(db)
	commentRepository := momentRepo.NewCommentRepository(db)
	strategies := momentRepo.ParseStrategies(cfg.NotificationInsertStrategies)
	notificationRepository := momentRepo.NewNotificationRepository(db, strategies)

	// Initialize FCM Client (optional, reminders degrade to logs without it)
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, FCM disabled")
	}

	// Snapshot storage, one file per user under the snapshot directory
	adapter, err := storage.NewFileAdapter(cfg.SnapshotDir)
	if err != nil {
		log.Fatal("Failed to initialize snapshot storage:", err)
	}

	notifier := momentScheduler.NewPushNotifier(fcmTokenRepo, fcmClient)

	manager := store.NewManager(func(userID string) *store.Store {
		return store.New(
			momentRepository,
			preparationRepository,
			commentRepository,
			notificationRepository,
			adapter,
			notifier,
			store.DefaultStorageKey+":"+userID,
		)
	})

	// Reminder sweeps
	reminderScheduler := momentScheduler.NewReminderScheduler(manager)
	reminderScheduler.Start()
	defer reminderScheduler.Stop()

	// Realtime refresh via Pub/Sub, only when a project is configured
	var realtimeService *realtime.Service
	if cfg.GoogleProjectID != "" {
		realtimeService, err = realtime.NewService(cfg.GoogleProjectID, cfg.PubSubTopic, userRepo, manager, cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize realtime service: %v", err)
			realtimeService = nil
		} else {
			go realtimeService.Start(context.Background())
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, realtime service disabled")
	}

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, fcmTokenRepo, manager, notificationRepository, realtimeService)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
