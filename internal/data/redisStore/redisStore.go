package redisStore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/pkg/logger_i"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	logger    = logger_i.NewLogger("Redis Store")
	once      sync.Once
)

type Options struct {
	Addr     string
	Password string
}

type Store struct {
	client *redis.Client
	Type   int
}

// GetRedisStore returns the shared store for one logical DB, connecting on
// first use. Clients are closed when ctx ends.
func GetRedisStore(ctx context.Context, opts Options, DBType int) (*Store, error) {
	mu.RLock()
	instance, exists := instances[DBType]
	mu.RUnlock()

	if exists {
		return instance, nil
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[DBType]; exists {
		return instance, nil
	}
	return createNewStore(ctx, opts, DBType)
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Redis Stores")
	mu.Lock()
	defer mu.Unlock()
	for dbType, store := range instances {
		err := store.client.Close()
		if err != nil {
			logger.Error("Error closing redis client", "db", dbType, "error", err)
		}
		delete(instances, dbType)
	}
	logger.Info("Redis Store Closed successfully")
}

func createNewStore(ctx context.Context, opts Options, dbType int) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = config.RedisAddr
	}
	newClient := redis.NewClient(&redis.Options{
		Addr:                  opts.Addr,
		Password:              opts.Password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		_ = newClient.Close()
		logger.Error("Redis is offline", "addr", opts.Addr, "error", err)
		return nil, fmt.Errorf("redis %s db %d: %w", opts.Addr, dbType, err)
	}

	logger.Info("Redis store ready", "addr", opts.Addr, "db", dbType)

	newStore := &Store{
		client: newClient,
		Type:   dbType,
	}

	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore, nil
}

// NewTestStore wraps a client that the caller owns, for tests against miniredis.
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}
