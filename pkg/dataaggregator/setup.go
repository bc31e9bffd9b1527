package dataaggregator

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/config"
	"github.com/travigo/nextdepartures/pkg/fallback"
	"github.com/travigo/nextdepartures/pkg/prim"
	"github.com/travigo/nextdepartures/pkg/redis_client"
)

// Setup wires a reconciler from configuration. Redis is used for the shared fallback copy and
// the journey pattern cache when TRAVIGO_REDIS_ADDRESS is set.
func Setup(cfg *config.Config) (*Reconciler, error) {
	client := prim.NewClient(cfg.PRIM.BaseURL, cfg.PRIM.ProxyPrefix, cfg.PRIM.APIKey, cfg.RequestTimeout())

	var loader fallback.Loader = &fallback.SourceLoader{
		FirstLast:  cfg.Fallback.FirstLast,
		Stops:      cfg.Fallback.Stops,
		HTTPClient: client.HTTPClient,
	}

	useRedis := redis_client.Enabled()
	if useRedis {
		if err := redis_client.Connect(); err != nil {
			return nil, err
		}

		mirror := fallback.NewRedisMirror(loader, redis_client.Client, cfg.FallbackInterval())
		mirror.Now = func() time.Time { return time.Now().In(cfg.Location) }
		loader = mirror
	}

	fallbackCache := fallback.NewCache(loader, cfg.FallbackTTL())

	reconciler := NewReconciler(cfg.Lines, client, fallbackCache, cfg.Location)
	if useRedis {
		reconciler.Itineraries.Cache = NewItineraryCache(redis_client.Client, cfg.ItineraryTTL())
	}

	log.Info().
		Int("lines", len(cfg.Lines)).
		Str("timezone", cfg.Location.String()).
		Bool("redis", useRedis).
		Msg("Configured departure reconciler")

	return reconciler, nil
}
