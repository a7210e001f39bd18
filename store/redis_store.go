package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"defaulter-server-go/dataset"
)

const artifactKeyPrefix = "artifact:"

// RedisStore keeps artifacts as Redis string values, one key per artifact.
// It implements the same ArtifactStore contract as FileStore so the backend
// is swappable through configuration alone.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context // Base context
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", addr, err)
	}

	log.Printf("Successfully connected to Redis at %s (DB %d)", addr, db)
	return &RedisStore{
		Client: rdb,
		Ctx:    context.Background(),
	}, nil
}

func artifactKey(name string) string {
	return artifactKeyPrefix + name
}

// SaveDataset serializes ds as xlsx bytes under the artifact key.
func (s *RedisStore) SaveDataset(name string, ds *dataset.Dataset) error {
	var buf bytes.Buffer
	if err := ds.WriteXLSX(&buf); err != nil {
		return fmt.Errorf("failed to serialize dataset %s: %w", name, err)
	}
	return s.Put(name, buf.Bytes())
}

// LoadDataset reads back a previously saved dataset.
func (s *RedisStore) LoadDataset(name string) (*dataset.Dataset, error) {
	data, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Parse(bytes.NewReader(data), extOf(name))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", name, err)
	}
	return ds, nil
}

// Put writes raw artifact bytes.
func (s *RedisStore) Put(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.Client.Set(s.Ctx, artifactKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write artifact %s to Redis: %w", name, err)
	}
	return nil
}

// Get reads raw artifact bytes, returning ErrNotFound for missing names.
func (s *RedisStore) Get(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := s.Client.Get(s.Ctx, artifactKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read artifact %s from Redis: %w", name, err)
	}
	return data, nil
}

// Exists reports whether the named artifact is present.
func (s *RedisStore) Exists(name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	n, err := s.Client.Exists(s.Ctx, artifactKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check artifact existence for %s: %w", name, err)
	}
	return n > 0, nil
}
