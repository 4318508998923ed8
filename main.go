package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/liamneesonsarm/pickemup/handlers"
	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/config"
	"github.com/liamneesonsarm/pickemup/internal/database"
	"github.com/liamneesonsarm/pickemup/internal/dispatch"
	"github.com/liamneesonsarm/pickemup/internal/identity"
	"github.com/liamneesonsarm/pickemup/internal/preference"
	"github.com/liamneesonsarm/pickemup/internal/providers"
	"github.com/liamneesonsarm/pickemup/internal/storage"
	"github.com/liamneesonsarm/pickemup/internal/tokens"
	"github.com/liamneesonsarm/pickemup/pkg/logger"
	"github.com/liamneesonsarm/pickemup/pkg/metrics"
	"github.com/liamneesonsarm/pickemup/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	ctx := context.Background()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Redis powers the background job queue and the optional distributed rate limiter
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// MongoDB is the system of record; retry on startup races
	var client *mongo.Client
	const maxAttempts = 5
	backoff := time.Second
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if err != nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureAccountIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to ensure indexes: %v", err)
	}
	store := account.NewMongoStore(db)
	prefs := preference.NewMongoStore(db.Collection("preferences"))

	// background job dispatch degrades to logged no-ops without Redis
	var dispatcher dispatch.Dispatcher
	if redisClient != nil {
		dispatcher = dispatch.NewRedisDispatcher(redisClient, "")
	} else {
		logger.Warnf("Redis unavailable, background refresh jobs are disabled")
		dispatcher = dispatch.NewNopDispatcher()
	}

	resolver := identity.NewResolver(store, prefs, dispatcher)

	// provider clients
	flows := providers.NewOAuthFlows(cfg.Providers)
	githubClient := providers.NewGithubClient()
	fetchers := map[account.Provider]handlers.ViewerFetcher{
		account.ProviderGithub: githubClient,
	}
	if cfg.Providers.Linkedin.ClientID != "" {
		li, err := providers.NewLinkedinClient(ctx, cfg.Providers.Linkedin.ClientID)
		if err != nil {
			logger.Warnf("linkedin client unavailable: %v", err)
		} else {
			fetchers[account.ProviderLinkedin] = li
		}
	}
	seClient := providers.NewStackexchangeClient(cfg.Providers.StackexchangeKey)

	// avatar object store is optional; /me/avatar 404s without it
	var presigner handlers.AvatarPresigner
	if minioStore, err := storage.NewMinIOStorage(cfg.Storage); err != nil {
		logger.Warnf("minio unavailable: %v", err)
	} else {
		presigner = minioStore
	}

	// metrics
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: mongo is required, redis only when rate limiting depends on it
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{"mongodb": true}
		if err := client.Ping(c.Request.Context(), nil); err != nil {
			deps["mongodb"] = false
			ready = false
		}
		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		status := http.StatusOK
		label := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	authHandler := handlers.NewAuthHandler(cfg, flows, fetchers, resolver)
	authHandler.Register(r.Group("/"))

	verifier := middleware.VerifierFunc(func(ctx context.Context, raw string) (string, error) {
		return tokens.ParseAccessToken(cfg, raw)
	})
	usersHandler := handlers.NewUsersHandler(store, prefs, resolver, flows, seClient, presigner)
	usersHandler.Register(r.Group("/api/v1"), middleware.AuthMiddleware(verifier))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("server listening on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}
