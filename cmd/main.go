package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/vuthanhlam/quizbank/config"
	"github.com/vuthanhlam/quizbank/database"
	"github.com/vuthanhlam/quizbank/internal/controller"
	"github.com/vuthanhlam/quizbank/internal/crypto"
	"github.com/vuthanhlam/quizbank/internal/logger"
	"github.com/vuthanhlam/quizbank/internal/model"
	"github.com/vuthanhlam/quizbank/internal/provider"
	"github.com/vuthanhlam/quizbank/internal/repository"
	"github.com/vuthanhlam/quizbank/internal/service"
	"github.com/vuthanhlam/quizbank/internal/taskqueue"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quizbank API
// @version 1.0
// @description AI-assisted question generation and answer verification service.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,
			NewCipher,
			NewTaskBackend, // Provides taskqueue.Queue + taskqueue.ProgressStore
			provider.NewFactory,
			func(f *provider.Factory) service.ProviderResolver { return f },
		),

		// Repositories Layer
		fx.Provide(
			repository.NewQuestionRepository,
			repository.NewBankRepository,
			repository.NewAttemptRepository,
			repository.NewAttemptDetailRepository,
			repository.NewAIConfigRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewCredentialService,
			service.NewVerifyService,
			service.NewGenerationService,
			service.NewAttemptService,
			service.NewWorkerPool,
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewGenerationController,
			controller.NewAttemptController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartWorkerPool),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func NewCipher(cfg *config.Config) (*crypto.Cipher, error) {
	return crypto.NewCipher(cfg.EncryptionKey)
}

// NewTaskBackend selects the queue/progress backend: Redis when enabled,
// otherwise the in-process store (single-instance deployments only).
func NewTaskBackend(cfg *config.Config) (taskqueue.Queue, taskqueue.ProgressStore) {
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := taskqueue.NewRedisStore(client, cfg.Generation.TaskTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis task backend")
		return store, store
	}
	store := taskqueue.NewMemoryStore()
	log.Info().Msg("Using in-process task backend")
	return store, store
}

// RegisterRoutesAndStartServer configures API routes and manages the HTTP
// server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	generationCtrl *controller.GenerationController,
	attemptCtrl *controller.AttemptController,
) {
	api := router.Group("/api/v1")
	{
		api.POST("/questions/generate", generationCtrl.GenerateSync)
		api.POST("/questions/generate/async", generationCtrl.StartAsync)
		api.GET("/questions/generate/tasks/:task_id", generationCtrl.GetProgress)
		api.POST("/ai-configs", generationCtrl.CreateAIConfig)

		api.POST("/attempts", attemptCtrl.StartAttempt)
		api.POST("/attempts/:attempt_id/answers", attemptCtrl.SubmitAnswers)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quizbank API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func StartWorkerPool(lc fx.Lifecycle, pool *service.WorkerPool) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.QuestionBank{},
		&model.Question{},
		&model.QuizAttempt{},
		&model.AttemptDetail{},
		&model.AIConfig{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
