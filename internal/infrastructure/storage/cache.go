package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"chainapi/internal/application"
	"chainapi/internal/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	journalCacheVersionKey = "chainapi:journal:version"
	journalCacheKeyPrefix  = "chainapi:journal:v"
	defaultCacheTTL        = time.Hour
)

type CacheConfig struct {
	TTL time.Duration
}

// CachedRepository serves journal queries from Redis. Every write bumps a
// version key so stale pages are never read back.
type CachedRepository struct {
	Journal
	cache redis.UniversalClient
	ttl   time.Duration
}

func NewCachedRepository(base Journal, client redis.UniversalClient, cfg CacheConfig) (*CachedRepository, error) {
	if base == nil {
		return nil, errors.New("base repository is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}
	return &CachedRepository{Journal: base, cache: client, ttl: cfg.TTL}, nil
}

func (r *CachedRepository) StoreEntries(ctx context.Context, entries []domain.JournalEntry) error {
	if err := r.Journal.StoreEntries(ctx, entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedRepository) QueryEntries(ctx context.Context, filter application.JournalQueryFilter) ([]domain.JournalEntry, error) {
	if r.cache == nil {
		return r.Journal.QueryEntries(ctx, filter)
	}
	version, ok := r.cacheVersion(ctx)
	if !ok {
		return r.Journal.QueryEntries(ctx, filter)
	}
	key := journalCacheKey(version, filter)
	if cached, err := r.cache.Get(ctx, key).Result(); err == nil {
		var entries []domain.JournalEntry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return entries, nil
		}
	}

	entries, err := r.Journal.QueryEntries(ctx, filter)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return entries, nil
	}
	_ = r.cache.Set(ctx, key, payload, r.ttl).Err()
	return entries, nil
}

func (r *CachedRepository) cacheVersion(ctx context.Context) (string, bool) {
	version, err := r.cache.Get(ctx, journalCacheVersionKey).Result()
	if err == nil {
		return version, true
	}
	if errors.Is(err, redis.Nil) {
		return "0", true
	}
	return "", false
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Incr(ctx, journalCacheVersionKey).Err()
}

func journalCacheKey(version string, filter application.JournalQueryFilter) string {
	var b strings.Builder
	b.Grow(160)
	b.WriteString(journalCacheKeyPrefix)
	b.WriteString(version)
	b.WriteString(":chain=")
	if filter.ChainID != nil {
		b.WriteString(strconv.FormatUint(*filter.ChainID, 10))
	} else {
		b.WriteString("all")
	}
	writePart(&b, "contract", strings.ToLower(filter.Contract))
	writePart(&b, "sender", strings.ToLower(filter.Sender))
	writePart(&b, "method", filter.Method)
	b.WriteString(":limit=")
	b.WriteString(strconv.Itoa(filter.Limit))
	return b.String()
}

func writePart(b *strings.Builder, name, value string) {
	b.WriteString(":")
	b.WriteString(name)
	b.WriteString("=")
	if value == "" {
		value = "any"
	}
	b.WriteString(value)
}
