// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bakery-popup/internal/config"
	"bakery-popup/internal/db"
	"bakery-popup/internal/domain/popup"
	authHandler "bakery-popup/internal/handlers/auth"
	popupHandler "bakery-popup/internal/handlers/popup"
	wsHandler "bakery-popup/internal/handlers/websocket"
	"bakery-popup/internal/metrics"
	"bakery-popup/internal/middleware"
	"bakery-popup/internal/pkg/clock"
	"bakery-popup/internal/pkg/jwt"
	"bakery-popup/internal/pkg/ratelimit"
	"bakery-popup/internal/pkg/session"
	"bakery-popup/internal/repository"
	"bakery-popup/internal/repository/cache"
	firestoreRepo "bakery-popup/internal/repository/firestore"
	"bakery-popup/internal/repository/memory"
	"bakery-popup/internal/repository/postgres"
	popupUsecase "bakery-popup/internal/service/popup"
	"bakery-popup/internal/websocket"
	wsHandlers "bakery-popup/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg     config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	closers []func()
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start wires the service and serves HTTP until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	defer s.close()

	if err := s.cfg.Validate(); err != nil {
		return err
	}

	// ----- Offer store -----
	store, err := s.openStore(ctx)
	if err != nil {
		return err
	}

	// ----- Redis (optional) -----
	redisClient := s.connectRedis()
	if redisClient != nil {
		store = cache.NewDocumentCache(store, redisClient, s.cfg.FeedCacheTTL, s.logger)
	}

	// ----- JWT -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		// The storefront works without it; only the authoring API is locked.
		s.logger.Warn("operator token verifier unavailable, authoring API disabled", zap.Error(err))
		verifier = nil
	}

	// ----- Operator sessions -----
	// Without Redis the manager tracks nothing and revokes nothing.
	var sessions *session.Manager
	if redisClient != nil {
		sessions = session.NewManager(redisClient)
	}

	// ----- Metrics -----
	popupMetrics := metrics.NewPopupMetrics(s.cfg.MetricsNamespace)

	// ----- Rate limiters -----
	var activationLimiter, saveLimiter *ratelimit.Limiter
	if redisClient != nil {
		activationLimiter = ratelimit.NewLimiter(redisClient, "activation", s.cfg.ActivationLimitPerMinute, time.Minute)
		saveLimiter = ratelimit.NewLimiter(redisClient, "save", s.cfg.SaveLimitPerMinute, time.Minute)
	}

	// ----- Services (Usecases) -----
	loader := popupUsecase.NewFeedLoader(store, s.logger, popupMetrics)
	authoring := popupUsecase.NewAuthoringService(store, repository.NewProbeUpserter(store), s.logger, popupMetrics)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(s.logger)
	hub.RegisterHandler(wsHandlers.NewPopupHandler(loader, activationLimiter, clock.Real{}, s.logger, popupMetrics))

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:       authHandler.NewAuthHandler(sessions, s.logger),
		PopupHandler:      popupHandler.NewPopupHandler(loader, authoring, hub),
		WSHandler:         wsHandler.NewWebSocketHandler(hub, s.cfg.AllowedOrigins, s.logger),
		AuthMiddleware:    middleware.NewAuthMiddleware(verifier, sessions),
		ActivationLimiter: activationLimiter,
		SaveLimiter:       saveLimiter,
		Metrics:           popupMetrics,
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, s.logger, handlers)

	// ----- Start HTTP -----
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server running",
			zap.String("addr", s.cfg.HTTPAddr),
			zap.String("store", s.cfg.StoreBackend),
			zap.Bool("redis", redisClient != nil),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *Server) openStore(ctx context.Context) (popup.DocumentStore, error) {
	switch s.cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)

		store := postgres.NewDocumentStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendFirestore:
		client, err := db.NewFirestoreClient(ctx, s.cfg.FirebaseProjectID, s.cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { client.Close() })
		return firestoreRepo.NewDocumentStore(client), nil

	default:
		s.logger.Warn("using in-memory offer store; offers are lost on restart")
		return memory.NewDocumentStore(), nil
	}
}

// connectRedis returns nil when Redis is not configured or unreachable.
// Caching and rate limiting are optional.
func (s *Server) connectRedis() redis.UniversalClient {
	if len(s.cfg.RedisAddrs) == 0 {
		return nil
	}

	client, err := db.NewRedis(db.RedisConfig{
		ClusterMode: len(s.cfg.RedisAddrs) > 1,
		Addresses:   s.cfg.RedisAddrs,
		Password:    s.cfg.RedisPass,
		PoolSize:    10,
	})
	if err != nil {
		s.logger.Warn("redis unavailable, running without cache and rate limits", zap.Error(err))
		return nil
	}

	s.closers = append(s.closers, func() { client.Close() })
	s.logger.Info("redis connected", zap.Strings("addrs", s.cfg.RedisAddrs))
	return client
}

func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
