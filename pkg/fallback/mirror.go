package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MirroredLoader shares the day's fallback dataset between processes through redis so only
// one of them reaches the upstream source each day
type MirroredLoader struct {
	Upstream Loader
	Cache    *cache.Cache[string]
	Prefix   string
	Now      func() time.Time
}

func NewRedisMirror(upstream Loader, client *redis.Client, expiration time.Duration) *MirroredLoader {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &MirroredLoader{
		Upstream: upstream,
		Cache:    cache.New[string](redisStore),
		Prefix:   "nextdepartures:fallback",
		Now:      time.Now,
	}
}

func (m *MirroredLoader) key() string {
	return fmt.Sprintf("%s:%s", m.Prefix, m.Now().Format("20060102"))
}

func (m *MirroredLoader) Load(ctx context.Context) (*Dataset, error) {
	key := m.key()

	if cached, err := m.Cache.Get(ctx, key); err == nil && cached != "" {
		var dataset Dataset
		if err := json.Unmarshal([]byte(cached), &dataset); err == nil && dataset.FirstLast != nil {
			if dataset.Stops == nil {
				dataset.Stops = StopsTable{}
			}
			log.Debug().Str("key", key).Msg("Using mirrored static fallback")
			return &dataset, nil
		}
		log.Warn().Str("key", key).Msg("Ignoring unreadable mirrored static fallback")
	}

	dataset, err := m.Upstream.Load(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(dataset)
	if err != nil {
		return nil, err
	}
	if err := m.Cache.Set(ctx, key, string(encoded)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to mirror static fallback")
	}

	return dataset, nil
}
