package dataaggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/fallback"
	"github.com/travigo/nextdepartures/pkg/prim"
)

// ItineraryResolver finds the calling points of a journey, first from the live journey pattern,
// then from the static stops list of the direction
type ItineraryResolver struct {
	Feed     FeedSource
	Resolver *fallback.Resolver

	// Optional shared cache of journey pattern lookups
	Cache *cache.Cache[string]
}

func NewItineraryCache(client *redis.Client, expiration time.Duration) *cache.Cache[string] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return cache.New[string](redisStore)
}

func (i *ItineraryResolver) Resolve(ctx context.Context, key ctdf.StopKey, journeyPatternRef ctdf.Optional[string], dataset *fallback.Dataset) (string, ctdf.AbsenceReason) {
	if ref, ok := journeyPatternRef.Get(); ok {
		if stops, ok := i.journeyPatternStops(ctx, ref).Get(); ok {
			return prim.FormatItinerary(stops), ctdf.AbsenceNone
		}
	}

	if stops, ok := i.Resolver.ResolveStops(dataset, key).Get(); ok {
		return prim.FormatItinerary(stops), ctdf.AbsenceNone
	}

	return ctdf.ItineraryUnavailable, ctdf.AbsenceItineraryDetailUnavailable
}

func (i *ItineraryResolver) journeyPatternStops(ctx context.Context, ref string) ctdf.Optional[[]string] {
	cacheKey := fmt.Sprintf("nextdepartures:journeypattern:%s", ref)

	if i.Cache != nil {
		if cached, err := i.Cache.Get(ctx, cacheKey); err == nil && cached != "" {
			return ctdf.Present(strings.Split(cached, prim.ItinerarySeparator))
		}
	}

	journeyPattern, err := i.Feed.JourneyPattern(ctx, ref)
	if err != nil {
		log.Debug().Err(err).Str("journeypattern", ref).Msg("Journey pattern lookup failed")
		return ctdf.Absent[[]string](ctdf.AbsenceItineraryDetailUnavailable)
	}

	stops := journeyPattern.StopNames()
	if stops.Valid() && i.Cache != nil {
		if err := i.Cache.Set(ctx, cacheKey, prim.FormatItinerary(stops.Value)); err != nil {
			log.Debug().Err(err).Str("journeypattern", ref).Msg("Failed to cache journey pattern")
		}
	}

	return stops
}
