package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/preview"
	"github.com/MrSnakeDoc/linkshelf/internal/redis"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
	redisstore "github.com/MrSnakeDoc/linkshelf/internal/store/redis"
	"github.com/MrSnakeDoc/linkshelf/internal/store/sqlite"
)

// OpenBackend connects the configured persistence backend: Redis when
// LINKSHELF_REDIS_ADDR is set, SQLite/libsql otherwise.
func OpenBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Backend, error) {
	if cfg.UseRedis() {
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, err
		}
		return redisstore.NewStore(client), nil
	}

	st, err := sqlite.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info("database opened", logger.String("driver", st.Name()))
	return st, nil
}

// OpenCredential binds the preview key to the backend settings. When nothing
// is stored yet, LINKSHELF_PREVIEW_API_KEY is written as the initial value.
func OpenCredential(ctx context.Context, cfg *config.Config, backend store.Settings, log logger.Logger) (*preview.Credential, error) {
	cred, err := preview.NewCredential(ctx, store.Slot(backend, store.PreviewKeySetting))
	if err != nil {
		return nil, err
	}

	if !cred.Configured() && cfg.PreviewAPIKey != "" {
		if err := cred.Set(ctx, cfg.PreviewAPIKey); err != nil {
			return nil, err
		}
		log.Info("preview key initialized from environment")
	}
	if !cred.Configured() {
		log.Warn("no preview key configured, previews fall back to domain titles")
	}
	return cred, nil
}
