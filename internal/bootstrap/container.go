package bootstrap

import (
	"context"
	"fmt"

	"pdfchat-be/internal/config"
	"pdfchat-be/internal/controller"
	"pdfchat-be/internal/handler"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/pkg/serverutils"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/internal/service"
	"pdfchat-be/internal/websocket"
	pktNats "pdfchat-be/pkg/nats"
	"pdfchat-be/pkg/rag/prompt"
	"pdfchat-be/pkg/rag/response"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const transcriptTopic = "transcripts.reconcile"

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	PaymentController  controller.IPaymentController
	AuthMiddleware     fiber.Handler

	// Background Services (started by Start)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	StatusHandler *handler.StatusHandler
	WebSocketHub  *websocket.Hub

	// LocalUploadsRoot is served under /uploads when documents live on disk.
	LocalUploadsRoot string

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	uowFactory := unitofwork.NewRepositoryFactory(db, cfg.Ai.EmbeddingDimensions)

	c := &Container{Logger: sysLogger}

	// 2. Document pipeline
	store, err := NewDocumentStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if cfg.Storage.Driver != "s3" {
		c.LocalUploadsRoot = cfg.Storage.LocalRoot
	}

	embedder, err := NewEmbedder(cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	index, err := NewVectorIndex(cfg.RAG.VectorIndex, db, cfg.Ai.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("vector index: %w", err)
	}
	sysLogger.Info("Bootstrap", "RAG components ready", map[string]interface{}{
		"embedding_provider": cfg.Ai.EmbeddingProvider,
		"dimensions":         cfg.Ai.EmbeddingDimensions,
		"vector_index":       cfg.RAG.VectorIndex,
		"storage":            cfg.Storage.Driver,
	})

	llmProvider, err := NewLLMProvider(cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	pipeline := NewIngestPipeline(store, embedder, index, cfg.RAG, sysLogger)
	retriever := NewRetrieval(embedder, index, NewIntentClassifier(cfg.Ai, llmProvider, llmLogger), cfg.RAG, sysLogger)

	// 3. Transcript persistence with out-of-band reconciliation
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	transcripts := service.NewTranscriptStore(uowFactory)
	c.ConsumerService = service.NewConsumerService(
		pubSub,
		transcriptTopic,
		transcripts,
		cfg.Reconcile.MaxRedeliveries,
		cfg.Reconcile.CommitBaseDelay,
		sysLogger,
	)

	generator := response.NewGenerator(
		llmProvider,
		prompt.NewBuilder("", cfg.RAG.MaxHistory),
		transcripts,
		c.ConsumerService,
		response.CommitPolicy{Attempts: cfg.Reconcile.CommitAttempts, BaseDelay: cfg.Reconcile.CommitBaseDelay},
		llmLogger,
		LLMOptions(cfg.Ai)...,
	)

	// 4. Event bus and status pushes. Both are optional: without NATS no
	// status events are pushed, without Redis the hub stays single-instance.
	var publisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
	} else {
		publisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, wsLogger)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		c.NotificationService = service.NewNotificationService(natsSub, c.WebSocketHub, wsLogger)
		c.closers = append(c.closers, natsSub.Close)
	}

	// 5. Domain services
	paymentService := service.NewPaymentService(uowFactory, service.NewSnapClient(cfg.Midtrans), publisher, cfg.Midtrans, sysLogger)
	documentService := service.NewDocumentService(
		uowFactory,
		store,
		pipeline,
		paymentService,
		publisher,
		cfg.Quota.FreeDocumentLimit,
		sysLogger,
	)
	chatService := service.NewChatService(uowFactory, retriever, generator, cfg.RAG.MaxHistory, sysLogger)

	// 6. Controllers
	c.AuthMiddleware = serverutils.JwtMiddleware(cfg.Auth.JWTSecret)
	c.DocumentController = controller.NewDocumentController(documentService)
	c.ChatController = controller.NewChatController(chatService, sysLogger)
	c.PaymentController = controller.NewPaymentController(paymentService, sysLogger)
	c.StatusHandler = handler.NewStatusHandler(c.WebSocketHub, cfg.Auth.JWTSecret, wsLogger)

	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })
	return c, nil
}

// Start launches the background workers. They stop when ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("transcript consumer: %w", err)
	}
	if c.NotificationService != nil {
		if err := c.NotificationService.Start(ctx); err != nil {
			return fmt.Errorf("notification service: %w", err)
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
