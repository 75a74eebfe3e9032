package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the client writes.
const KeyPrefix = "duel:"

// RedisStore keeps the session under a TTL'd key and history in a capped
// list.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	limit  int
	prefix string
}

var _ Store = (*RedisStore)(nil)

// OpenRedis connects to the server in opts and verifies it answers.
func OpenRedis(ctx context.Context, opts Options) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.RedisAddr, err)
	}
	return NewRedisStore(client, opts.SessionTTL, opts.HistoryLimit), nil
}

// NewRedisStore wraps an existing client. A zero ttl stores the session
// without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration, historyLimit int) *RedisStore {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &RedisStore{client: client, ttl: ttl, limit: historyLimit, prefix: KeyPrefix}
}

func (r *RedisStore) sessionKey() string { return r.prefix + "session" }
func (r *RedisStore) gamesKey() string   { return r.prefix + "games" }

func (r *RedisStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.sessionKey(), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadSession(ctx context.Context) (SessionRecord, error) {
	data, err := r.client.Get(ctx, r.sessionKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionRecord{}, ErrNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return SessionRecord{}, fmt.Errorf("decode session: %w", err)
	}
	return rec, nil
}

func (r *RedisStore) ClearSession(ctx context.Context) error {
	if err := r.client.Del(ctx, r.sessionKey()).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *RedisStore) RecordGame(ctx context.Context, rec GameRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, r.gamesKey(), data)
	pipe.LTrim(ctx, r.gamesKey(), 0, int64(r.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	return nil
}

func (r *RedisStore) RecentGames(ctx context.Context, limit int) ([]GameRecord, error) {
	limit = clampLimit(limit, r.limit)
	items, err := r.client.LRange(ctx, r.gamesKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	out := make([]GameRecord, 0, len(items))
	for _, item := range items {
		var rec GameRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode game: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
