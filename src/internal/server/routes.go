package server

import (
	"net/http"
	"time"

	"timetrack-session-svc/src/clients"
	"timetrack-session-svc/src/internal/dependency"
	"timetrack-session-svc/src/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRoutes(deps *dependency.Manager) {
	router := deps.Router
	router.Use(enableCORS)

	setupHealthEndpoint(deps)
	setupSessionRoutes(router, deps)
	setupAdminRoutes(router, deps)
}

func setupHealthEndpoint(deps *dependency.Manager) {
	router := deps.Router
	mongodb := deps.Mongodb
	redisClient := deps.Redis
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		log.Info("Health check endpoint requested")

		mongoStatus := "ok"
		if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
			mongoStatus = "error: " + err.Error()
		}

		redisStatus := "ok"
		if err := redisClient.Client.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error: " + err.Error()
		}

		c.JSON(200, gin.H{
			"status":    "ok",
			"service":   cfg.App.Name,
			"version":   cfg.App.Version,
			"mongodb":   mongoStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	})

	router.GET("/health/detailed", func(c *gin.Context) {
		log.Info("Detailed health check endpoint requested")

		c.JSON(200, gin.H{
			"status":  "operational",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"components": gin.H{
				"database": gin.H{
					"mongodb": getStatus(isMongoConnected(mongodb, c)),
					"redis":   getStatus(isRedisConnected(redisClient.Client, c)),
				},
				"services": gin.H{
					"admission": "operational",
					"cleanup":   "operational",
					"cache":     "operational",
				},
			},
		})
	})
}

func setupSessionRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := middleware.NewAuthMiddleware(
		deps.Config.Security.JwtKey,
		deps.CacheService,
		deps.SessionStore,
	)

	handler := deps.SessionHandler

	sessions := router.Group("/api/v1/sessions")
	{
		// creation runs on a fresh token, before any session record exists
		sessions.POST("",
			setRouteName("createSession"),
			authMiddleware.RequireToken(),
			handler.CreateSession)

		sessions.GET("",
			setRouteName("listSessions"),
			authMiddleware.RequireAuth(),
			handler.ListSessions)

		sessions.GET("/current",
			setRouteName("getCurrentSession"),
			authMiddleware.RequireAuth(),
			handler.GetCurrentSession)

		sessions.DELETE("/:id",
			setRouteName("revokeSession"),
			authMiddleware.RequireAuth(),
			handler.RevokeSession)
	}
}

func setupAdminRoutes(router *gin.Engine, deps *dependency.Manager) {
	authMiddleware := middleware.NewAuthMiddleware(
		deps.Config.Security.JwtKey,
		deps.CacheService,
		deps.SessionStore,
	)

	admin := router.Group("/api/v1/admin")
	{
		admin.POST("/cleanup",
			setRouteName("runCleanup"),
			authMiddleware.RequireAuth(),
			authMiddleware.RequireAdminRights(),
			func(c *gin.Context) {
				report, err := deps.CleanupJob.Run(c.Request.Context())
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "Cleanup run failed",
						"success": false,
						"message": err.Error(),
					})
					return
				}

				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"data":    report,
					"message": "Cleanup run completed",
				})
			})
	}
}

func setRouteName(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("route_name", name)
		c.Next()
	}
}

func isMongoConnected(mongodb *clients.MongoDB, c *gin.Context) bool {
	if err := mongodb.Client.Ping(c.Request.Context(), nil); err != nil {
		return false
	}
	return true
}

func isRedisConnected(redisClient *redis.Client, c *gin.Context) bool {
	if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
		return false
	}
	return true
}

func enableCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == "OPTIONS" {
		c.AbortWithStatus(204)
		return
	}

	c.Next()
}

func getStatus(b bool) string {
	if b {
		return "connected"
	}
	return "disconnected"
}
