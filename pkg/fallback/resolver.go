package fallback

import (
	"github.com/travigo/nextdepartures/pkg/ctdf"
)

// Resolver maps a stop key onto the static records of its line. It never touches the network.
type Resolver struct {
	lines map[string]*ctdf.Line
}

func NewResolver(lines []*ctdf.Line) *Resolver {
	resolver := &Resolver{lines: map[string]*ctdf.Line{}}
	for _, line := range lines {
		resolver.lines[line.ID] = line
	}
	return resolver
}

// Resolve returns the first/last schedule for the key, or the absent schedule
func (r *Resolver) Resolve(dataset *Dataset, key ctdf.StopKey) ctdf.StaticSchedule {
	line, exists := r.lines[key.LineID]
	if !exists || dataset == nil {
		return ctdf.StaticSchedule{}
	}

	return dataset.FirstLast.lookup(line.GTFSID, key.Direction)
}

// ResolveStops returns the static list of stops served in the key's direction
func (r *Resolver) ResolveStops(dataset *Dataset, key ctdf.StopKey) ctdf.Optional[[]string] {
	line, exists := r.lines[key.LineID]
	if !exists || dataset == nil {
		return ctdf.Absent[[]string](ctdf.AbsenceFallbackAbsent)
	}

	stops := dataset.Stops[line.GTFSID][key.Direction]
	if len(stops) == 0 {
		return ctdf.Absent[[]string](ctdf.AbsenceFallbackAbsent)
	}

	return ctdf.Present(stops)
}
