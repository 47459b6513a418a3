package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

func TestOpenBackendSQLite(t *testing.T) {
	cfg := &config.Config{DatabaseURL: filepath.Join(t.TempDir(), "shelf.db")}

	backend, err := OpenBackend(context.Background(), cfg, logger.Noop())
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer backend.Close()

	if backend.Name() != "sqlite" {
		t.Errorf("Name() = %q, want sqlite", backend.Name())
	}
}

func TestOpenBackendRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		RedisAddr:           mr.Addr(),
		RedisDT:             time.Second,
		RedisRT:             time.Second,
		RedisWT:             time.Second,
		RedisPoolSize:       2,
		RedisConnectTimeout: time.Second,
		RedisRetryInterval:  10 * time.Millisecond,
		RedisMaxWait:        50 * time.Millisecond,
		RedisPingTimeout:    200 * time.Millisecond,
		RedisWarnThreshold:  1,
	}

	backend, err := OpenBackend(context.Background(), cfg, logger.Noop())
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer backend.Close()

	if backend.Name() != "redis" {
		t.Errorf("Name() = %q, want redis", backend.Name())
	}
	if err := backend.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestOpenCredential(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  string
		envKey  string
		wantKey string
	}{
		{name: "nothing anywhere", wantKey: ""},
		{name: "env key bootstraps empty slot", envKey: "env-key", wantKey: "env-key"},
		{name: "stored key wins over env", stored: "saved-key", envKey: "env-key", wantKey: "saved-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := store.NewMemory()
			if tt.stored != "" {
				if err := backend.SetSetting(ctx, store.PreviewKeySetting, tt.stored); err != nil {
					t.Fatal(err)
				}
			}

			cred, err := OpenCredential(ctx, &config.Config{PreviewAPIKey: tt.envKey}, backend, logger.Noop())
			if err != nil {
				t.Fatalf("OpenCredential() error = %v", err)
			}
			if cred.Key() != tt.wantKey {
				t.Errorf("Key() = %q, want %q", cred.Key(), tt.wantKey)
			}
			if got, _ := backend.GetSetting(ctx, store.PreviewKeySetting); got != tt.wantKey {
				t.Errorf("stored key = %q, want %q", got, tt.wantKey)
			}
		})
	}
}
