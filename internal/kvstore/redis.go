// Package kvstore keeps the task snapshot in Redis for setups that already
// run one locally.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/Joseda-hg/taskmaster/internal/model"
	"github.com/Joseda-hg/taskmaster/internal/snapshot"
)

const DefaultKey = "taskmaster:tasks"

type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore stores the snapshot under key, or DefaultKey when key is empty.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if client == nil {
		panic("kvstore.NewRedisStore: client is nil")
	}
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// Dial connects using a redis:// URL and checks the server responds.
func Dial(ctx context.Context, url, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, key), nil
}

func (s *RedisStore) Load(ctx context.Context) ([]model.Task, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	tasks, err := snapshot.Decode(data)
	if err != nil {
		log.WithError(err).WithField("key", s.key).Warn("stored task data was partly unreadable")
	}
	return tasks, nil
}

func (s *RedisStore) Save(ctx context.Context, tasks []model.Task) error {
	data, err := snapshot.Encode(tasks)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
