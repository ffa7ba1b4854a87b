// internal/store/redis_history.go
//
// Redis-backed play history. Each user has a sorted set of location ids scored by
// play time in unix milliseconds, so "most recent N" is one ZREVRANGE.
//
// The durable copy stays in SQLite:
//   - RecordPlayed writes through to the wrapped store first. If the Redis write then
//     fails the user's key is deleted, so the cache never misses a recorded play.
//   - RecentlyPlayed trusts Redis only for a full page of limit ids. A short page
//     (cold cache, evicted key, dropped write) or a Redis error reads the database,
//     and a short page is refilled from the rows it read.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/geoquest/internal/geo"
)

// historyCap bounds each user's sorted set.
const historyCap = 100

// PlayHistory is the durable play history behind the cache. *SQLite implements it.
type PlayHistory interface {
	RecentPlays(ctx context.Context, userID string, limit int) ([]geo.PlayedRecord, error)
	RecordPlayed(ctx context.Context, userID, locationID string, at time.Time) error
}

// History is what the game reads and writes. *SQLite and *RedisHistory implement it.
type History interface {
	RecentlyPlayed(ctx context.Context, userID string, limit int) ([]string, error)
	RecordPlayed(ctx context.Context, userID, locationID string, at time.Time) error
}

type RedisHistory struct {
	rdb  *redis.Client
	next PlayHistory
}

// NewRedisHistory caches history for next in rdb.
func NewRedisHistory(rdb *redis.Client, next PlayHistory) *RedisHistory {
	return &RedisHistory{rdb: rdb, next: next}
}

// OpenRedis parses rawURL and pings the server.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

func historyKey(userID string) string {
	return "geoquest:played:" + userID
}

func (h *RedisHistory) RecordPlayed(ctx context.Context, userID, locationID string, at time.Time) error {
	if err := h.next.RecordPlayed(ctx, userID, locationID, at); err != nil {
		return err
	}

	key := historyKey(userID)
	_, err := h.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: locationID})
		p.ZRemRangeByRank(ctx, key, 0, -historyCap-1)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("redis history write, dropping cached history")
		if err := h.rdb.Del(ctx, key).Err(); err != nil {
			log.Error().Err(err).Str("user", userID).Msg("redis history delete")
		}
	}
	return nil
}

func (h *RedisHistory) RecentlyPlayed(ctx context.Context, userID string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	ids, err := h.rdb.ZRevRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("redis history read, using database")
		return h.fromDatabase(ctx, userID, limit, false)
	}
	if len(ids) >= limit {
		return ids, nil
	}
	return h.fromDatabase(ctx, userID, limit, true)
}

func (h *RedisHistory) fromDatabase(ctx context.Context, userID string, limit int, refill bool) ([]string, error) {
	recs, err := h.next.RecentPlays(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if refill && len(recs) > 0 {
		h.refill(ctx, userID, recs)
	}
	return playedIDs(recs), nil
}

// refill merges recs into the cached set. GT keeps a newer score already in Redis.
func (h *RedisHistory) refill(ctx context.Context, userID string, recs []geo.PlayedRecord) {
	members := make([]redis.Z, len(recs))
	for i, r := range recs {
		members[i] = redis.Z{Score: float64(r.PlayedAt.UnixMilli()), Member: r.LocationID}
	}
	key := historyKey(userID)
	_, err := h.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAddGT(ctx, key, members...)
		p.ZRemRangeByRank(ctx, key, 0, -historyCap-1)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("redis history refill")
	}
}

// Ping reports Redis reachability for the health check.
func (h *RedisHistory) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}
