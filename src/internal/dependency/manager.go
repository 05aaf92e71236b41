package dependency

import (
	"timetrack-session-svc/src/clients"
	"timetrack-session-svc/src/internal/cache"
	"timetrack-session-svc/src/internal/cleanup"
	"timetrack-session-svc/src/internal/config"
	"timetrack-session-svc/src/internal/session"

	"github.com/gin-gonic/gin"
)

type Manager struct {
	Router         *gin.Engine
	Config         *config.Configuration
	Mongodb        *clients.MongoDB
	Redis          *clients.RedisClient
	RabbitMQ       *clients.RabbitMQ
	Events         *clients.EventsPublisher
	SessionStore   session.Store
	SessionService session.Service
	SessionHandler session.Handler
	CacheService   cache.Service
	CleanupJob     *cleanup.Job
	CleanupSched   *cleanup.Scheduler
}

func NewDependencyManager(router *gin.Engine,
	mongodb *clients.MongoDB,
	redisClient *clients.RedisClient,
	rabbitMQ *clients.RabbitMQ,
	cfg *config.Configuration) *Manager {
	events := clients.NewEventsPublisher(cfg, rabbitMQ.Channel)
	cacheService := cache.NewCacheService(redisClient.Client, cfg)
	sessionStore := session.NewSessionRepository(mongodb, cfg)
	sessionService := session.NewSessionService(sessionStore, cacheService, events, cfg)
	sessionHandler := session.NewHandler(cfg, sessionService)

	classifier := session.NewClassifier(&cfg.Session)
	reclaimer := session.NewReclaimer(sessionStore, &cfg.Cleanup)
	cleanupJob := cleanup.NewJob(sessionStore, classifier, reclaimer, events)
	cleanupSched := cleanup.NewScheduler(cleanupJob, &cfg.Cleanup)

	return &Manager{
		Router:         router,
		Config:         cfg,
		Mongodb:        mongodb,
		Redis:          redisClient,
		RabbitMQ:       rabbitMQ,
		Events:         events,
		SessionStore:   sessionStore,
		SessionService: sessionService,
		SessionHandler: sessionHandler,
		CacheService:   cacheService,
		CleanupJob:     cleanupJob,
		CleanupSched:   cleanupSched,
	}
}
