package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/gigmate/internal/config"
	"github.com/thereayou/gigmate/internal/database"
	"github.com/thereayou/gigmate/internal/handlers"
	"github.com/thereayou/gigmate/internal/middleware"
	"github.com/thereayou/gigmate/internal/realtime"
	"github.com/thereayou/gigmate/internal/services"
	ws "github.com/thereayou/gigmate/internal/websocket"
	"github.com/thereayou/gigmate/pkg/auth"
	"github.com/thereayou/gigmate/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager

	events *realtime.Hub
	relay  *realtime.RedisRelay
	wsHub  *ws.Hub
	cfg    *config.Config
	log    *logger.Logger
}

func NewServer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Server, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, err
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		rdb.Close()
		return nil, err
	}

	events := realtime.NewHub(cfg.RealtimeBuffer, log)
	relay := realtime.NewRedisRelay(rdb, cfg.RealtimeRedisChannel, log)
	events.SetRelay(relay)

	wsHub := ws.NewHub(log)

	rooms := services.NewRoomService(db, db, db, events, log)
	rooms.SetPresence(wsHub)
	catalog := services.NewCatalogService(db, db)
	orchestrator := services.NewOrchestrator(db, db, events, log)
	connections := services.NewConnectionService(db, db, db, orchestrator, events,
		services.ConnectionOptions{AllowRequestAfterDecline: cfg.AllowRequestAfterDecline}, log)
	threads := services.NewThreadService(db, db, events, log)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	revocations := middleware.NewRedisRevocations(rdb)

	messageHandler := handlers.NewMessageHandler(events, rooms, threads, connections, log)
	h := Handlers{
		Auth:       handlers.NewAuthHandler(jwtMgr, revocations, log),
		User:       handlers.NewUserHandler(catalog, log),
		Room:       handlers.NewRoomHandler(rooms, catalog, log),
		Message:    handlers.NewHTTPMessageHandler(rooms, threads, log),
		Connection: handlers.NewConnectionHandler(connections, orchestrator, log),
		Thread:     handlers.NewThreadHandler(threads, log),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, messageHandler, cfg.AllowedOrigins, log),
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	APIEndpoints(router, middleware.AuthMiddleware(jwtMgr, revocations, log), h)

	return &Server{
		Router:     router,
		DB:         db,
		Redis:      rdb,
		JWTManager: jwtMgr,
		events:     events,
		relay:      relay,
		wsHub:      wsHub,
		cfg:        cfg,
		log:        log,
	}, nil
}

// Run обслуживает HTTP, ретранслятор и реестр соединений до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("server starting", "port", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return s.relay.Run(gctx, s.events)
	})

	g.Go(func() error {
		return s.wsHub.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) Close() {
	if err := s.Redis.Close(); err != nil {
		s.log.Warn("redis close failed", "error", err)
	}
	if err := s.DB.Close(); err != nil {
		s.log.Warn("database close failed", "error", err)
	}
}
