package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wricardo/connect-n/game/service"
)

// RedisKeyPrefix namespaces session keys
const RedisKeyPrefix = "connectn:session:"

const redisTimeout = 2 * time.Second

// RedisPersistence implements SessionPersistence with one JSON value per
// session key
type RedisPersistence struct {
	client *redis.Client
	codec  sessionCodec
	ttl    time.Duration
}

// NewRedisClient connects to addr and verifies the connection with PING
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedisPersistence stores sessions through client. A zero ttl keeps
// sessions until they are deleted.
func NewRedisPersistence(client *redis.Client, configManager service.ConfigManager, ttl time.Duration) *RedisPersistence {
	return &RedisPersistence{
		client: client,
		codec:  sessionCodec{configManager: configManager},
		ttl:    ttl,
	}
}

// Save writes the session JSON under its key
func (rp *RedisPersistence) Save(session *service.Session) error {
	jsonData, err := rp.codec.encode(session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := rp.client.Set(ctx, redisKey(session.ID), jsonData, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session to redis: %w", err)
	}
	return nil
}

// Load reads and rebuilds a session
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	jsonData, err := rp.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session from redis: %w", err)
	}

	return rp.codec.decode(jsonData)
}

// Delete removes the session key
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	removed, err := rp.client.Del(ctx, redisKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs using SCAN
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*redisTimeout)
	defer cancel()

	var ids []string
	iter := rp.client.Scan(ctx, 0, RedisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), RedisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if the session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	n, err := rp.client.Exists(ctx, redisKey(id)).Result()
	return err == nil && n > 0
}

// Close closes the underlying client
func (rp *RedisPersistence) Close() error {
	return rp.client.Close()
}

func redisKey(id string) string {
	return RedisKeyPrefix + strings.ToLower(id)
}
