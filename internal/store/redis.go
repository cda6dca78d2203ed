package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pbaille/unikit/internal/config"
	"github.com/pbaille/unikit/internal/domain"
)

const defaultRedisPrefix = "unikit"

// Redis keeps values in a redis server, for setups sharing one ledger across machines
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Backend = (*Redis)(nil)

// NewRedis connects and pings the server described by cfg
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	return NewRedisClient(client, cfg.Prefix), nil
}

// NewRedisClient wraps an existing client
func NewRedisClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// kvKey namespaces a value key: unikit:kv:{key}
func (r *Redis) kvKey(key string) string {
	return r.prefix + ":kv:" + key
}

// historyKey is the list holding calculations, newest first
func (r *Redis) historyKey() string {
	return r.prefix + ":calculations"
}

// Close closes the client
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns the raw value stored under key
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.kvKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the value stored under key
func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.kvKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.kvKey(key)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// AddCalculation pushes a calculation onto the history list
func (r *Redis) AddCalculation(ctx context.Context, cgpa, credits float64) (*domain.Calculation, error) {
	c := &domain.Calculation{
		ID:        uuid.New().String(),
		CGPA:      cgpa,
		Credits:   credits,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode calculation: %w", err)
	}
	if err := r.client.LPush(ctx, r.historyKey(), data).Err(); err != nil {
		return nil, fmt.Errorf("insert calculation: %w", err)
	}
	return c, nil
}

// ListCalculations returns recent calculations with pagination
func (r *Redis) ListCalculations(ctx context.Context, limit, offset int) ([]domain.Calculation, error) {
	items, err := r.client.LRange(ctx, r.historyKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("list calculations: %w", err)
	}

	calcs := make([]domain.Calculation, 0, len(items))
	for _, item := range items {
		var c domain.Calculation
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			return nil, fmt.Errorf("decode calculation: %w", err)
		}
		calcs = append(calcs, c)
	}
	return calcs, nil
}
