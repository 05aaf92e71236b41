package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"timetrack-session-svc/src/clients"
	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = *logrus.StandardLogger()

type Server struct {
	deps *dependency.Manager
	cfg  *config.Configuration
}

func New(cfg *config.Configuration) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	mongodb, err := clients.NewMongoDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	redisClient, err := clients.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}

	rabbitMQ, err := clients.NewRabbitMQ(&cfg.Queue)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	if err := rabbitMQ.SetupQueue(); err != nil {
		log.WithError(err).Fatal("Failed to set up RabbitMQ exchange")
	}

	deps := dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, cfg)
	SetupRoutes(deps)

	return &Server{
		deps: deps,
		cfg:  cfg,
	}
}

func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.cfg.Cleanup.Enabled {
		go s.deps.CleanupSched.Start(ctx)
	} else {
		log.Warn("Session cleanup scheduler is disabled")
	}

	httpServer := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      s.deps.Router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on port %s", s.cfg.Server.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	s.deps.RabbitMQ.Close()
	s.deps.Redis.Close()
	s.deps.Mongodb.Close()

	return nil
}
