package siri_sm

import (
	"github.com/travigo/nextdepartures/pkg/ctdf"
)

// SplitByDirection buckets visits into the line's configured directions, keeping feed order.
// Visits whose DirectionRef matches no direction are dropped.
func SplitByDirection(line *ctdf.Line, visits []*MonitoredStopVisit) (map[string][]*MonitoredStopVisit, int) {
	directions := map[string][]*MonitoredStopVisit{}
	unmatched := 0

	for _, direction := range line.Directions {
		directions[direction.Key] = []*MonitoredStopVisit{}
	}

	for _, visit := range visits {
		if visit == nil {
			continue
		}

		directionRef := ""
		if journey, ok := visit.Journey().Get(); ok {
			directionRef = journey.DirectionRef.String()
		}

		direction := line.MatchDirection(directionRef)
		if direction == nil {
			unmatched++
			continue
		}

		directions[direction.Key] = append(directions[direction.Key], visit)
	}

	return directions, unmatched
}
