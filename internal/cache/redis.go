package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// RedisClient keeps short-lived auth state: one-time passwords and revoked tokens
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(cfg Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

// NewRedisClientFrom wraps an existing client.
func NewRedisClientFrom(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func otpKey(email string) string {
	return "otp:" + email
}

func revokedKey(tokenID string) string {
	return "revoked:" + tokenID
}

// StoreOTP saves the code for email, replacing any earlier one.
func (c *RedisClient) StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := c.client.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	return nil
}

// ConsumeOTP reports whether code matches the stored one. A matching code is
// deleted so it cannot be used twice.
func (c *RedisClient) ConsumeOTP(ctx context.Context, email, code string) (bool, error) {
	stored, err := c.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp lookup error: %w", err)
	}
	if stored != code {
		return false, nil
	}

	deleted, err := c.client.Del(ctx, otpKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume otp: %w", err)
	}
	return deleted == 1, nil
}

// Revoke blocks a token id until the token would have expired anyway.
func (c *RedisClient) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (c *RedisClient) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation lookup error: %w", err)
	}
	return n == 1, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
