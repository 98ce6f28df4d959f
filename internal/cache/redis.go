package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/video-subscription-client/internal/config"
)

// Redis кеш, разделяемый несколькими процессами клиента. Ключи хранятся
// с префиксом, чтобы Clear не задевал чужие данные в той же базе.
type Redis struct {
	db     *redis.Client
	prefix string
}

// NewRedis подключается к redis и возвращает кеш с заданным префиксом ключей.
func NewRedis(ctx context.Context, cfg config.RedisConnection, prefix string) (*Redis, error) {
	const op = "cache.NewRedis"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{db: db, prefix: prefix}, nil
}

// Get пытается получить значение из кеша по ключу.
func (c *Redis) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Redis.Get"
	val, err := c.db.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в кеш с временем жизни.
func (c *Redis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Redis.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.db.Set(ctx, c.prefix+key, jsonData, expiration).Err()
}

// Invalidate удаляет значения из кеша по ключам.
func (c *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, c.prefix+key)
	}
	return c.db.Del(ctx, prefixed...).Err()
}

// Clear удаляет все ключи кеша с его префиксом.
func (c *Redis) Clear(ctx context.Context) error {
	const op = "cache.Redis.Clear"
	var cursor uint64
	for {
		keys, next, err := c.db.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if len(keys) > 0 {
			if err := c.db.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close закрывает подключение к redis.
func (c *Redis) Close() error {
	return c.db.Close()
}
