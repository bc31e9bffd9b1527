package realtime

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/nextdepartures/pkg/dataaggregator"
)

// Tracker periodically re-runs the reconciliation. Departure refreshes are started on every tick
// without waiting for the previous one, superseded results are discarded by the board.
type Tracker struct {
	Reconciler *dataaggregator.Reconciler

	DeparturesRefreshRate time.Duration
	FallbackRefreshRate   time.Duration
}

func (t *Tracker) Run(ctx context.Context) {
	log.Info().
		Int("lines", len(t.Reconciler.Lines)).
		Dur("refreshdepartures", t.DeparturesRefreshRate).
		Dur("refreshfallback", t.FallbackRefreshRate).
		Msg("Starting departures tracker")

	var wg conc.WaitGroup
	defer wg.Wait()

	t.Reconciler.Fallback.Refresh(ctx)

	wg.Go(func() {
		t.every(ctx, t.FallbackRefreshRate, false, func() {
			t.Reconciler.Fallback.Refresh(ctx)
		})
	})

	t.every(ctx, t.DeparturesRefreshRate, true, func() {
		wg.Go(func() {
			startTime := time.Now()
			t.Reconciler.RefreshAll(ctx)

			log.Info().Dur("duration", time.Since(startTime)).Msg("Refreshed departures")
		})
	})
}

func (t *Tracker) every(ctx context.Context, interval time.Duration, immediately bool, task func()) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	if immediately {
		task()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task()
		}
	}
}
