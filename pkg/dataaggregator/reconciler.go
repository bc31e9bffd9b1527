package dataaggregator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/departureboard"
	"github.com/travigo/nextdepartures/pkg/fallback"
	"github.com/travigo/nextdepartures/pkg/prim"
	"github.com/travigo/nextdepartures/pkg/siri_sm"
)

type FeedSource interface {
	StopMonitoring(ctx context.Context, monitoringRef string) (*siri_sm.SiriSM, error)
	GeneralMessage(ctx context.Context, lineRef string) (*siri_sm.SiriSM, error)
	JourneyPattern(ctx context.Context, journeyPatternRef string) (*prim.JourneyPattern, error)
}

type Reconciler struct {
	Lines []*ctdf.Line

	Feed        FeedSource
	Fallback    *fallback.Cache
	Resolver    *fallback.Resolver
	Itineraries *ItineraryResolver
	Board       *Board

	Location *time.Location
	Now      func() time.Time

	ItineraryConcurrency int
}

func NewReconciler(lines []*ctdf.Line, feed FeedSource, fallbackCache *fallback.Cache, location *time.Location) *Reconciler {
	resolver := fallback.NewResolver(lines)

	return &Reconciler{
		Lines:    lines,
		Feed:     feed,
		Fallback: fallbackCache,
		Resolver: resolver,
		Itineraries: &ItineraryResolver{
			Feed:     feed,
			Resolver: resolver,
		},
		Board:                NewBoard(),
		Location:             location,
		Now:                  time.Now,
		ItineraryConcurrency: 4,
	}
}

func (r *Reconciler) GetLine(lineID string) *ctdf.Line {
	for _, line := range r.Lines {
		if line.ID == lineID {
			return line
		}
	}
	return nil
}

func (r *Reconciler) now() time.Time {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	if r.Location != nil {
		now = now.In(r.Location)
	}
	return now
}

// RefreshLine reconciles every direction of the line. Stop states are committed as soon as they
// are built and itineraries are attached to them afterwards. It returns copies of the states this
// refresh committed that have not since been superseded.
func (r *Reconciler) RefreshLine(ctx context.Context, line *ctdf.Line) []*ctdf.StopState {
	generations := map[string]uint64{}
	for _, direction := range line.Directions {
		generations[direction.Key] = r.Board.NextGeneration(line.Key(direction.Key))
	}
	messageGeneration := r.Board.NextMessageGeneration(line.ID)

	p := pool.New()
	p.Go(func() {
		r.refreshTrafficMessages(ctx, line, messageGeneration)
	})

	dataset := r.Fallback.Get(ctx)
	visits := r.fetchVisits(ctx, line)
	now := r.now()

	split, unmatched := siri_sm.SplitByDirection(line, visits)
	if unmatched > 0 {
		log.Debug().Str("line", line.ID).Int("visits", unmatched).Msg("Dropped visits with an unknown direction")
	}

	itineraryPool := pool.New().WithMaxGoroutines(max(r.ItineraryConcurrency, 1))
	committed := []ctdf.StopKey{}

	for _, direction := range line.Directions {
		key := line.Key(direction.Key)

		events := siri_sm.NormaliseVisits(split[direction.Key], now.Location())
		schedule := r.Resolver.Resolve(dataset, key)

		state := departureboard.GenerateStopState(events, schedule, line.TransportType, now)
		state.Key = key
		state.Generation = generations[direction.Key]

		if !r.Board.Commit(state) {
			continue
		}
		committed = append(committed, key)

		log.Debug().
			Str("stop", key.String()).
			Str("kind", string(state.Kind)).
			Int("groups", len(state.Groups)).
			Uint64("generation", state.Generation).
			Msg("Committed stop state")

		for _, group := range state.Groups {
			journeyPatternRef := ctdf.Absent[string](ctdf.AbsenceFieldMissing)
			if len(group.Departures) > 0 && group.Departures[0].JourneyPatternRef != "" {
				journeyPatternRef = ctdf.Present(group.Departures[0].JourneyPatternRef)
			}

			itineraryPool.Go(func() {
				itinerary, reason := r.Itineraries.Resolve(ctx, key, journeyPatternRef, dataset)
				r.Board.AttachItinerary(key, state.Generation, group.Destination, itinerary, reason)
			})
		}
	}

	itineraryPool.Wait()
	p.Wait()

	states := []*ctdf.StopState{}
	for _, key := range committed {
		if state, exists := r.Board.Get(key); exists && state.Generation == generations[key.Direction] {
			states = append(states, state)
		}
	}

	return states
}

func (r *Reconciler) fetchVisits(ctx context.Context, line *ctdf.Line) []*siri_sm.MonitoredStopVisit {
	document, err := r.Feed.StopMonitoring(ctx, line.MonitoringRef)
	if err != nil {
		log.Warn().
			Err(err).
			Str("line", line.ID).
			Str("reason", string(ctdf.AbsenceFeedUnreachable)).
			Msg("Live departures unavailable")
		return nil
	}

	return document.Visits()
}

func (r *Reconciler) refreshTrafficMessages(ctx context.Context, line *ctdf.Line, generation uint64) {
	messages := []*ctdf.TrafficMessage{}

	document, err := r.Feed.GeneralMessage(ctx, line.LineRef)
	if err != nil {
		log.Warn().Err(err).Str("line", line.ID).Msg("Traffic messages unavailable")
	} else {
		messages = document.ActiveTrafficMessages(line.LineRef, r.now())
	}

	r.Board.CommitTrafficMessages(line.ID, generation, messages)
}

// RefreshAll reconciles every configured line concurrently
func (r *Reconciler) RefreshAll(ctx context.Context) {
	p := pool.New()
	for _, line := range r.Lines {
		p.Go(func() {
			r.RefreshLine(ctx, line)
		})
	}
	p.Wait()
}
