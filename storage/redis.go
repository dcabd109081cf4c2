package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	tbjson "github.com/xyzj/toolbox/json"
)

const stateKeyPrefix = "visionchat_state_"

type (
	// RedisOpt configures a RedisStorage.
	RedisOpt struct {
		namespace string        // Suffix of the hash key holding the document
		timeout   time.Duration // Per call timeout
	}
	// RedisOpts is a function type for configuring RedisStorage options.
	RedisOpts func(opt *RedisOpt)
)

// WithNamespace sets the suffix appended to the Redis hash key, so several
// profiles can share one Redis database.
func WithNamespace(ns string) RedisOpts {
	return func(opt *RedisOpt) {
		opt.namespace = ns
	}
}

// WithTimeout overrides the 3 second per call timeout.
func WithTimeout(t time.Duration) RedisOpts {
	return func(opt *RedisOpt) {
		opt.timeout = t
	}
}

// RedisStorage keeps the document in a Redis hash, one field per record.
type RedisStorage struct {
	cnf *RedisOpt
	db  *redis.Client
	key string
}

// NewRedisStorage creates a Redis backend using cli.
//
// Example:
//
//	st := NewRedisStorage(redisClient, WithNamespace("profile1"))
func NewRedisStorage(cli *redis.Client, opts ...RedisOpts) *RedisStorage {
	opt := &RedisOpt{
		namespace: "default",
		timeout:   3 * time.Second,
	}
	for _, o := range opts {
		o(opt)
	}
	return &RedisStorage{
		db:  cli,
		cnf: opt,
		key: stateKeyPrefix + opt.namespace,
	}
}

// Key returns the hash key holding the document.
func (s *RedisStorage) Key() string {
	return s.key
}

// Load reads every field of the state hash.
func (s *RedisStorage) Load() (Document, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cnf.timeout)
	defer cancel()
	vals, err := s.db.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, &StorageError{Backend: "redis", Op: "load", Path: s.key, Err: err}
	}
	doc := make(Document, len(vals))
	for k, v := range vals {
		if !tbjson.Valid(tbjson.Bytes(v)) {
			return nil, corrupt("redis", s.key+"#"+k, errInvalidRecord)
		}
		doc[k] = json.RawMessage(v)
	}
	return doc, nil
}

// Save replaces the state hash inside a MULTI/EXEC block so readers never see
// a partially written document.
func (s *RedisStorage) Save(doc Document) error {
	fields := make(map[string]any, len(doc))
	for k, v := range doc {
		fields[k] = string(v)
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cnf.timeout)
	defer cancel()
	_, err := s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return &StorageError{Backend: "redis", Op: "save", Path: s.key, Err: err}
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStorage) Close() error {
	return s.db.Close()
}
