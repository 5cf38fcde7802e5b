package bootstrap

import (
	"context"
	"log"
	"time"

	"atlas-be/internal/config"
	"atlas-be/internal/controller"
	"atlas-be/internal/handler"
	"atlas-be/internal/pkg/logger"
	"atlas-be/internal/pkg/mailer"
	"atlas-be/internal/repository/memory"
	"atlas-be/internal/repository/unitofwork"
	"atlas-be/internal/service"
	"atlas-be/internal/websocket"
	"atlas-be/pkg/llm/factory"
	"atlas-be/pkg/ratelimit"
	"atlas-be/pkg/voice"

	pktNats "atlas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ChatController    controller.IChatController
	VoiceController   controller.IVoiceController
	WebhookController controller.IWebhookController
	OpsController     controller.IOpsController

	// Background services (exposed for main.go to run)
	RetryWorkerService service.IRetryWorkerService
	BillingService     service.IBillingService
	OpsService         service.IOpsService

	// WebSockets & notifications
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Shared infrastructure, exposed for health reporting
	DB            *gorm.DB
	Redis         *redis.Client
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. In-process work queue for upload retries
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	llmKey := cfg.Keys.Anthropic
	if cfg.Ai.Provider == "openrouter" {
		llmKey = cfg.Keys.OpenRouter
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.Provider,
		llmKey,
		cfg.Ai.Model,
		cfg.Ai.OpenRouterURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	deepgram := voice.NewDeepgramClient(cfg.Keys.Deepgram)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// In-memory stores
	conversationCache := memory.NewConversationCache()
	messageLimiter := ratelimit.New(time.Minute)

	// 5. Services
	mailService := service.NewMailService(uowFactory, emailService, sysLogger, cfg.Billing.MailerLiteSecret)
	authService := service.NewAuthService(uowFactory, emailService, mailService, natsPub)
	oauthService := service.NewOAuthService(uowFactory)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		cfg.Ai.Model,
		conversationCache,
		messageLimiter,
		natsPub,
		sysLogger,
	)

	voiceService := service.NewVoiceService(
		uowFactory,
		deepgram,
		chatService,
		natsPub,
		sysLogger,
		cfg.Voice.SttModel,
		cfg.Voice.TtsVoice,
	)

	billingService := service.NewBillingService(
		uowFactory,
		emailService,
		natsPub,
		sysLogger,
		cfg.Billing.FastSpringSecret,
		cfg.Billing.PaddleSecret,
		cfg.Billing.GracePeriodDays,
	)

	opsService := service.NewOpsService(
		uowFactory,
		pubSub,
		cfg.Ops.RetryTopic,
		natsPub,
		sysLogger,
		cfg.Ops.AlertWebhookURL,
	)

	retryWorkerService := service.NewRetryWorkerService(
		pubSub,
		cfg.Ops.RetryTopic,
		uowFactory,
	)

	// 6. Notification system
	notifService := service.NewNotificationService(uowFactory, natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(notifService, wsHub, wsLogger)

	// 7. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService, oauthService),
		ChatController:    controller.NewChatController(chatService),
		VoiceController:   controller.NewVoiceController(voiceService),
		WebhookController: controller.NewWebhookController(billingService, mailService),
		OpsController: controller.NewOpsController(
			opsService,
			billingService,
			mailService,
			cfg.Ops.ServiceToken,
		),

		RetryWorkerService: retryWorkerService,
		BillingService:     billingService,
		OpsService:         opsService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,

		DB:            db,
		Redis:         rdb,
		NatsPublisher: natsPub,
	}
}
