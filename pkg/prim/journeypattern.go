package prim

import (
	"strings"

	"github.com/travigo/nextdepartures/pkg/ctdf"
)

const ItinerarySeparator = " ➔ "

type JourneyPattern struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	StopPoints []StopPoint `json:"stopPoints"`
}

type StopPoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StopNames returns the named calling points, absent when fewer than two are known
func (j *JourneyPattern) StopNames() ctdf.Optional[[]string] {
	names := []string{}
	if j != nil {
		for _, stopPoint := range j.StopPoints {
			if name := strings.TrimSpace(stopPoint.Name); name != "" {
				names = append(names, name)
			}
		}
	}

	if len(names) < 2 {
		return ctdf.Absent[[]string](ctdf.AbsenceItineraryDetailUnavailable)
	}
	return ctdf.Present(names)
}

func FormatItinerary(stops []string) string {
	return strings.Join(stops, ItinerarySeparator)
}
