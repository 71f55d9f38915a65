package bootstrap

import (
	"context"
	"log"

	"qr-health-be/internal/config"
	"qr-health-be/internal/controller"
	"qr-health-be/internal/handler"
	"qr-health-be/internal/pkg/logger"
	"qr-health-be/internal/pkg/mailer"
	"qr-health-be/internal/repository/implementation"
	"qr-health-be/internal/repository/unitofwork"
	"qr-health-be/internal/service"
	"qr-health-be/internal/websocket"
	"qr-health-be/pkg/events"
	"qr-health-be/pkg/llm"
	"qr-health-be/pkg/llm/ollama"
	"qr-health-be/pkg/storage"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController   controller.IAuthController
	UserController   controller.IUserController
	ChatController   controller.IChatController
	RecordController controller.IRecordController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Shared infrastructure
	EventBus  *events.Bus
	SysLogger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Event Bus
	eventBus := events.NewBus()

	// 3. Model provider
	var llmProvider llm.Provider = ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	log.Printf("[INFO] Using model endpoint: %s (%s)", cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)

	// 4. Object storage
	objectStorage, err := storage.NewS3Storage(context.Background(), storage.S3Config{
		Bucket:        cfg.Storage.Bucket,
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}

	// 5. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	// 6. Services
	authService := service.NewAuthService(uowFactory, eventBus)
	chatService := service.NewChatService(uowFactory, llmProvider, sysLogger)
	recordService := service.NewRecordService(uowFactory, objectStorage, eventBus, sysLogger)
	healthService := service.NewHealthService(db, llmProvider)

	notificationRepo := implementation.NewNotificationRepository(db)
	notificationService := service.NewNotificationService(
		notificationRepo,
		uowFactory,
		eventBus,
		wsHub,
		emailService,
		sysLogger,
	)

	// 7. HTTP surface
	notificationHandler := handler.NewNotificationHandler(notificationService, wsHub, wsLogger)

	return &Container{
		AuthController:   controller.NewAuthController(authService),
		UserController:   controller.NewUserController(authService),
		ChatController:   controller.NewChatController(chatService),
		RecordController: controller.NewRecordController(recordService),
		HealthController: controller.NewHealthController(healthService),

		NotificationService: notificationService,
		NotificationHandler: notificationHandler,
		WebSocketHub:        wsHub,

		EventBus:  eventBus,
		SysLogger: sysLogger,
	}
}
