// Package idempotency makes mutations retried with the same Idempotency-Key
// run once. The key is reserved before the mutation starts and later holds
// the response to replay.
package idempotency

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "chainapi:idempotency:"
)

// Key scopes a stored response to the acting signer, the client supplied key
// and the route.
type Key struct {
	Actor          string
	IdempotencyKey string
	Endpoint       string
}

// Record is a stored response. A pending record marks a key whose request is
// still running.
type Record struct {
	Status  int             `json:"status"`
	Body    json.RawMessage `json:"body,omitempty"`
	Pending bool            `json:"pending,omitempty"`
}

type Store interface {
	// Reserve claims key with a pending record. It reports false when the key
	// already holds a record.
	Reserve(ctx context.Context, key Key) (bool, error)
	Get(ctx context.Context, key Key) (Record, bool, error)
	// Save replaces the pending record with the final response.
	Save(ctx context.Context, key Key, record Record) error
	Release(ctx context.Context, key Key) error
}

// Claim is the state of a key when a request tries to take it.
type Claim int

const (
	// Claimed means the caller holds the key and must Save or Release it.
	Claimed Claim = iota
	// Completed means a response is stored for the key.
	Completed
	// InFlight means another request holds the key.
	InFlight
)

// Acquire reserves key for the caller or reports why it cannot. Without a key
// or a store every request is Claimed and Save and Release do nothing.
func Acquire(ctx context.Context, st Store, key Key) (Claim, Record, error) {
	if key.IdempotencyKey == "" || st == nil {
		return Claimed, Record{}, nil
	}
	reserved, err := st.Reserve(ctx, key)
	if err != nil {
		return Claimed, Record{}, err
	}
	if reserved {
		return Claimed, Record{}, nil
	}
	record, found, err := st.Get(ctx, key)
	if err != nil {
		return Claimed, Record{}, err
	}
	// a record that vanished between Reserve and Get expired mid-request
	if !found || record.Pending {
		return InFlight, Record{}, nil
	}
	return Completed, record, nil
}

func Save(ctx context.Context, st Store, key Key, record Record) error {
	if key.IdempotencyKey == "" || st == nil {
		return nil
	}
	record.Pending = false
	return st.Save(ctx, key, record)
}

func Release(ctx context.Context, st Store, key Key) error {
	if key.IdempotencyKey == "" || st == nil {
		return nil
	}
	return st.Release(ctx, key)
}

// RedisStore keeps records in Redis with a fixed TTL.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, key Key) (Record, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrap(err, "read idempotency record")
	}
	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return Record{}, false, errors.Wrap(err, "decode idempotency record")
	}
	return record, true, nil
}

func (s *RedisStore) Reserve(ctx context.Context, key Key) (bool, error) {
	payload, err := json.Marshal(Record{Pending: true})
	if err != nil {
		return false, errors.Wrap(err, "encode pending record")
	}
	ok, err := s.client.SetNX(ctx, redisKey(key), payload, s.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "reserve idempotency key")
	}
	return ok, nil
}

func (s *RedisStore) Save(ctx context.Context, key Key, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode idempotency record")
	}
	if err := s.client.Set(ctx, redisKey(key), payload, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "write idempotency record")
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, key Key) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return errors.Wrap(err, "release idempotency key")
	}
	return nil
}

func redisKey(key Key) string {
	return keyPrefix + strings.ToLower(key.Actor) + ":" + key.Endpoint + ":" + key.IdempotencyKey
}
