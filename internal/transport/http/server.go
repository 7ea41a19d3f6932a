package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"scholarchat/internal/ai"
	appsvc "scholarchat/internal/app"
	"scholarchat/internal/bootstrap"
	"scholarchat/internal/cache"
	"scholarchat/internal/model"
	"scholarchat/internal/pkg/pdfextract"
	rabbitmqClient "scholarchat/internal/platform/rabbitmq"
	"scholarchat/internal/repository"
	"scholarchat/internal/transport/http/handler"
	"scholarchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	paperRepo := repository.NewPaperRepository(app.MySQL)
	passageRepo := repository.NewPassageRepository(app.MySQL)
	sessionRepo := repository.NewChatSessionRepository(app.MySQL)
	messageRepo := repository.NewChatMessageRepository(app.MySQL)
	transactionRepo := repository.NewPointTransactionRepository(app.MySQL)
	feedbackRepo := repository.NewFeedbackRepository(app.MySQL)

	ledgerPublisher := rabbitmqClient.NewLedgerPublisher(app.MQConn, app.Config.RabbitMQ.LedgerQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	llmClient := ai.NewClient()
	embedder := ai.NewEmbeddingProvider(llmClient, ai.EmbeddingConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.EmbeddingModel,
	}, app.Config.LLM.EmbeddingDimension)
	generator := ai.NewAnswerProvider(llmClient, ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})

	authService := appsvc.NewAuthService(
		userRepo,
		ledgerPublisher,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		app.Config.Points.DailyBonus,
		app.Logger,
	)
	processingService := appsvc.NewProcessingService(
		passageRepo,
		pdfextract.Extractor{},
		embedder,
		app.Config.Chat.ChunkSize,
		app.Config.Chat.ChunkOverlap,
		app.Logger,
	)
	chatService := appsvc.NewChatService(
		paperRepo,
		sessionRepo,
		messageRepo,
		userRepo,
		processingService,
		passageRepo,
		ledgerPublisher,
		historyCache,
		embedder,
		generator,
		appsvc.ChatOptions{
			TopK:            app.Config.Chat.TopK,
			MaxContextChars: app.Config.Chat.MaxContextChars,
			CostPerQuery:    app.Config.Chat.CostPerQuery,
		},
		app.Logger,
	)
	paperService := appsvc.NewPaperService(
		paperRepo,
		userRepo,
		userRepo,
		ledgerPublisher,
		app.Config.Upload.Dir,
		app.Config.Upload.MaxSizeByte,
		app.Config.Points.DownloadCost,
		app.Logger,
	)
	pointsService := appsvc.NewPointsService(userRepo, userRepo, transactionRepo, ledgerPublisher, app.Logger)
	feedbackService := appsvc.NewFeedbackService(
		feedbackRepo,
		paperRepo,
		ledgerPublisher,
		app.Config.Points.FeedbackAward,
		app.Logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	paperHandler := handler.NewPaperHandler(paperService)
	pointsHandler := handler.NewPointsHandler(pointsService)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)

	authMW := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authMW, authHandler.Me)

	paperGroup := v1.Group("/papers")
	paperGroup.GET("", paperHandler.List)
	paperGroup.GET("/:paper_id", paperHandler.Get)
	paperGroup.POST("", authMW, paperHandler.Upload)
	paperGroup.GET("/:paper_id/download", authMW, paperHandler.Download)
	paperGroup.GET("/:paper_id/feedback", feedbackHandler.List)
	paperGroup.POST("/:paper_id/feedback", authMW, feedbackHandler.Create)

	chatGroup := v1.Group("/chat")
	chatGroup.Use(authMW)
	chatGroup.POST("/:paper_id", chatHandler.Ask)
	chatGroup.GET("/sessions", chatHandler.ListSessions)
	chatGroup.GET("/sessions/:session_id/history", chatHandler.GetHistory)
	chatGroup.DELETE("/sessions/:session_id", chatHandler.DeactivateSession)

	pointsGroup := v1.Group("/points")
	pointsGroup.Use(authMW)
	pointsGroup.GET("/balance", pointsHandler.Balance)
	pointsGroup.GET("/transactions", pointsHandler.Transactions)
	pointsGroup.POST("/credit", middleware.RequireRole(model.RoleAdmin), pointsHandler.Credit)

	return router
}
