package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/liamneesonsarm/pickemup/internal/account"
	"github.com/liamneesonsarm/pickemup/internal/config"
	"github.com/liamneesonsarm/pickemup/internal/database"
	"github.com/liamneesonsarm/pickemup/internal/dispatch"
	"github.com/liamneesonsarm/pickemup/internal/providers"
	"github.com/liamneesonsarm/pickemup/internal/refresh"
	"github.com/liamneesonsarm/pickemup/internal/storage"
	"github.com/liamneesonsarm/pickemup/pkg/logger"
)

// Background worker: consumes image-capture and profile-refresh jobs queued
// by the resolver and replays them against the provider APIs.
func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Redis.Host == "" {
		logger.Fatalf("worker requires Redis (set REDIS_HOST)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("failed to connect to Redis: %v", err)
	}

	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	store := account.NewMongoStore(client.Database(cfg.MongoDB.Database))

	githubClient := providers.NewGithubClient()
	var linkedinClient refresh.LinkedinAPI
	if cfg.Providers.Linkedin.ClientID != "" {
		li, err := providers.NewLinkedinClient(ctx, cfg.Providers.Linkedin.ClientID)
		if err != nil {
			logger.Warnf("linkedin client unavailable: %v", err)
		} else {
			linkedinClient = li
		}
	}
	if linkedinClient == nil {
		linkedinClient = noLinkedin{}
	}
	seClient := providers.NewStackexchangeClient(cfg.Providers.StackexchangeKey)

	minioStore, err := storage.NewMinIOStorage(cfg.Storage)
	if err != nil {
		logger.Fatalf("worker requires object storage for image capture: %v", err)
	}

	queue := dispatch.NewRedisDispatcher(redisClient, "")
	refresher := refresh.NewRefresher(store, githubClient, linkedinClient, seClient)
	capturer := refresh.NewImageCapturer(store, minioStore)

	refresh.NewWorker(queue, refresher, capturer).Run(ctx)
}

// noLinkedin fails refreshes instead of returning an empty profile, which
// would wipe the stored position and education sets.
type noLinkedin struct{}

func (noLinkedin) FetchProfile(ctx context.Context, token string) (*providers.LinkedinProfile, error) {
	return nil, errors.New("linkedin client not configured")
}
