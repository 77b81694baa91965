// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"friendchat-service/internal/config"
	"friendchat-service/internal/db"
	"friendchat-service/internal/db/migrate"
	"friendchat-service/internal/gotrue"
	betaHandler "friendchat-service/internal/handlers/betaaccess"
	"friendchat-service/internal/middleware"
	"friendchat-service/internal/pkg/jwt"
	"friendchat-service/internal/pkg/session"
	"friendchat-service/internal/repository/postgres"
	betaUsecase "friendchat-service/internal/service/betaaccess"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, engine: gin.New()}, nil
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if err := migrate.Up(s.cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// ----- Redis -----
	redisCfg := db.RedisConfig{
		ClusterMode: false,
		Addresses:   []string{s.cfg.RedisAddr},
		Password:    s.cfg.RedisPass,
		DB:          0,
		PoolSize:    10,
	}

	redisClient, err := db.NewRedisClient(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("[REDIS] ✅ Connected successfully")

	// ----- JWT Manager -----
	jwtManager, err := jwt.Build(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Rate Limiter -----
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Identity provider -----
	idp := gotrue.NewAdminClient(
		s.cfg.SupabaseURL,
		s.cfg.SupabaseServiceKey,
		s.cfg.SupabaseAnonKey,
		logger,
	)

	// ----- Repositories -----
	tokenRepo := postgres.NewBetaTokenRepository(pool)

	// ----- Services (Usecases) -----
	betaService := betaUsecase.NewService(tokenRepo, jwtManager, idp, logger)

	// ----- Handlers -----
	betaHandlerInst := betaHandler.NewBetaAccessHandler(betaService, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		BetaHandler:    betaHandlerInst,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
