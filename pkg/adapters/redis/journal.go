package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/machine/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "machine:exec:"

// Journal implements ports.Journal using Redis.
// Records are stored as JSON strings; an ordered set indexes them by the
// time they were recorded.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Journal.
type Option func(*Journal)

// WithTTL expires records after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix (default "machine:exec:").
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Journal {
	client := backend.NewClient(&backend.Options{
		Addr: addr,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Journal on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *Journal) key(id string) string {
	return j.prefix + id
}

func (j *Journal) indexKey() string {
	return j.prefix + "index"
}

// Record persists rec and indexes it.
func (j *Journal) Record(ctx context.Context, rec domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", rec.ID, err)
	}

	// With a TTL the score is the expiry, so List can drop stale index entries.
	score := time.Now().Add(j.ttl).UnixMilli()

	pipe := j.client.TxPipeline()
	pipe.Set(ctx, j.key(rec.ID), data, j.ttl)
	pipe.ZAdd(ctx, j.indexKey(), backend.Z{Score: float64(score), Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error recording %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a record by execution ID.
func (j *Journal) Get(ctx context.Context, id string) (domain.Record, error) {
	data, err := j.client.Get(ctx, j.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("redis error loading %s: %w", id, err)
	}

	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Record{}, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}
	return rec, nil
}

// List returns the recorded execution IDs, oldest first.
// Index entries of expired records are removed lazily.
func (j *Journal) List(ctx context.Context) ([]string, error) {
	if j.ttl > 0 {
		now := strconv.FormatInt(time.Now().UnixMilli(), 10)
		if err := j.client.ZRemRangeByScore(ctx, j.indexKey(), "-inf", now).Err(); err != nil {
			return nil, fmt.Errorf("redis error pruning index: %w", err)
		}
	}

	ids, err := j.client.ZRange(ctx, j.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error listing records: %w", err)
	}
	return ids, nil
}

// Delete removes a record and its index entry.
func (j *Journal) Delete(ctx context.Context, id string) error {
	pipe := j.client.TxPipeline()
	pipe.Del(ctx, j.key(id))
	pipe.ZRem(ctx, j.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error deleting %s: %w", id, err)
	}
	return nil
}
