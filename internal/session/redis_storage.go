package session

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStorage хранит значения сессии в Redis под общим префиксом
type RedisStorage struct {
	redisClient *redis.Client
	prefix      string
}

// NewRedisStorage создает хранилище поверх существующего клиента Redis
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "zefood:console"
	}
	return &RedisStorage{redisClient: client, prefix: prefix}
}

func (r *RedisStorage) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := r.redisClient.Get(ctx, r.key(key)).Result()
	if err == redis.Nil {
		// Ключ не найден
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("ошибка при получении %s из Redis: %w", key, err)
	}
	return val, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.redisClient.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении %s в Redis: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := r.redisClient.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("ошибка при удалении %s из Redis: %w", key, err)
	}
	return nil
}
