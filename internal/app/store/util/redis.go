package util

import (
	"context"
	"fmt"
	"time"

	"orderdesk/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const serviceName = "orderdesk"

const loginAttemptsKeyPrefix = "login_attempts:"

// LoginLimiter ограничивает число неудачных попыток входа по имени пользователя
// Счетчик живет в Redis с TTL, строки таблиц здесь не кешируются
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// NewRedisClient создает и проверяет Redis клиент
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Blocked сообщает, исчерпал ли пользователь лимит неудачных попыток
func (l *LoginLimiter) Blocked(ctx context.Context, username string) (bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	attempts, err := l.client.Get(ctx, loginAttemptsKeyPrefix+username).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return false, fmt.Errorf("failed to get login attempts: %w", err)
	}

	return attempts >= l.maxAttempts, nil
}

// RecordFailure увеличивает счетчик неудачных попыток
// TTL выставляется при первой неудаче в окне
func (l *LoginLimiter) RecordFailure(ctx context.Context, username string) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpIncr)
	defer timer.ObserveDuration()

	key := loginAttemptsKeyPrefix + username

	attempts, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpIncr)
		return fmt.Errorf("failed to increment login attempts: %w", err)
	}

	if attempts == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			metrics.RecordRedisError(serviceName, metrics.RedisOpExpire)
			return fmt.Errorf("failed to set login attempts ttl: %w", err)
		}
	}

	return nil
}

// Reset сбрасывает счетчик после успешного входа
func (l *LoginLimiter) Reset(ctx context.Context, username string) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := l.client.Del(ctx, loginAttemptsKeyPrefix+username).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}

	return nil
}
