package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist invalidates JWTs before they expire (logout, refresh rotation)
type TokenBlacklist interface {
	// AddToBlacklist revokes a token's JTI; ttl should be the token's remaining lifetime
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted checks if a token's JTI has been revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Cooldown grants at most one acquisition per key within a window. It backs
// the OTP resend throttle.
type Cooldown interface {
	// Acquire returns true if the key was free and is now held for window
	Acquire(ctx context.Context, key string, window time.Duration) (bool, error)
}

// RedisTokenStore implements TokenBlacklist and Cooldown on a shared Redis client
type RedisTokenStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient opens and pings a Redis connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisTokenStore wraps an existing Redis client
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client:    client,
		keyPrefix: "stratos:auth:",
	}
}

func (s *RedisTokenStore) jtiKey(jti string) string {
	return s.keyPrefix + "revoked:" + jti
}

func (s *RedisTokenStore) cooldownKey(key string) string {
	return s.keyPrefix + "cooldown:" + key
}

// AddToBlacklist stores the JTI until the token would have expired anyway
func (s *RedisTokenStore) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks if a token's JTI is in the blacklist
func (s *RedisTokenStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// Acquire uses SET NX so concurrent callers across instances see one winner
func (s *RedisTokenStore) Acquire(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.cooldownKey(key), time.Now().Unix(), window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire cooldown: %w", err)
	}
	return ok, nil
}

// Close closes the Redis client
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

var (
	_ TokenBlacklist = (*RedisTokenStore)(nil)
	_ Cooldown       = (*RedisTokenStore)(nil)
)

// InMemoryTokenStore is the single-instance fallback used when Redis is
// disabled, and in tests
type InMemoryTokenStore struct {
	mu        sync.Mutex
	revoked   map[string]time.Time // JTI -> expiration time
	cooldowns map[string]time.Time // key -> release time
	now       func() time.Time
}

// NewInMemoryTokenStore creates a new in-memory token store
func NewInMemoryTokenStore() *InMemoryTokenStore {
	return &InMemoryTokenStore{
		revoked:   make(map[string]time.Time),
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}
}

// AddToBlacklist adds a token's JTI to the in-memory blacklist
func (s *InMemoryTokenStore) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = s.now().Add(ttl)
	return nil
}

// IsBlacklisted checks if a token's JTI is blacklisted and not yet expired
func (s *InMemoryTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiration, exists := s.revoked[jti]
	if !exists {
		return false, nil
	}
	if s.now().After(expiration) {
		delete(s.revoked, jti)
		return false, nil
	}
	return true, nil
}

// Acquire holds key for window unless it is already held
func (s *InMemoryTokenStore) Acquire(_ context.Context, key string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if release, held := s.cooldowns[key]; held && now.Before(release) {
		return false, nil
	}
	s.cooldowns[key] = now.Add(window)
	return true, nil
}

var (
	_ TokenBlacklist = (*InMemoryTokenStore)(nil)
	_ Cooldown       = (*InMemoryTokenStore)(nil)
)
