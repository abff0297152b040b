package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout — потолок времени на одну операцию с Redis.
// Storage намеренно синхронный, поэтому контекст создаётся внутри.
const opTimeout = 3 * time.Second

// RedisStorage — хранилище сессии в Redis.
// Используется на общих терминалах (киосках), где файловая система
// недоступна или сессия должна переживать смену рабочего места.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage создаёт Redis хранилище сессии.
// prefix добавляется к ключам, чтобы изолировать записи клиента
// от других данных в том же Redis.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{
		client: client,
		prefix: prefix,
	}
}

// Set записывает значение под ключом.
func (r *RedisStorage) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

// Get возвращает значение под ключом.
// Отсутствующий ключ — ("", nil).
func (r *RedisStorage) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	return value, nil
}

// Delete удаляет запись под ключом.
func (r *RedisStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}
