package siri_sm

import (
	"strings"
	"time"

	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/util"
)

// Keyword sets are checked in order so the more crowded reading wins
var occupancyKeywords = []struct {
	Occupancy ctdf.Occupancy
	Keywords  []string
}{
	{Occupancy: ctdf.OccupancyHigh, Keywords: []string{"full", "crowd", "high"}},
	{Occupancy: ctdf.OccupancyMedium, Keywords: []string{"standing", "medium", "average"}},
	{Occupancy: ctdf.OccupancyLow, Keywords: []string{"seats", "low", "few", "empty", "available"}},
}

// NormaliseVisits converts feed visits into departure events in feed order, keeping at most
// MaxDepartures of them. Timestamps without an offset are read in location.
func NormaliseVisits(visits []*MonitoredStopVisit, location *time.Location) []*ctdf.DepartureEvent {
	events := []*ctdf.DepartureEvent{}

	for _, visit := range visits {
		if visit == nil {
			continue
		}
		if len(events) == MaxDepartures {
			break
		}

		events = append(events, NormaliseVisit(visit, location))
	}

	return events
}

func NormaliseVisit(visit *MonitoredStopVisit, location *time.Location) *ctdf.DepartureEvent {
	event := &ctdf.DepartureEvent{
		Destination:       ctdf.DestinationUnavailable,
		AimedTime:         ctdf.Absent[time.Time](ctdf.AbsenceFieldMissing),
		ExpectedTime:      ctdf.Absent[time.Time](ctdf.AbsenceFieldMissing),
		Occupancy:         ctdf.OccupancyUnknown,
		VehicleJourneyRef: ctdf.Absent[string](ctdf.AbsenceFieldMissing),
		JourneyPatternRef: ctdf.Absent[string](ctdf.AbsenceFieldMissing),
	}

	journey, hasJourney := visit.Journey().Get()
	call, hasCall := visit.Call().Get()

	if hasCall {
		event.AimedTime = departureOrArrival(call.AimedDepartureTime, call.AimedArrivalTime, location)
		event.ExpectedTime = departureOrArrival(call.ExpectedDepartureTime, call.ExpectedArrivalTime, location)

		event.Cancelled = isCancelled(call.ArrivalStatus) || isCancelled(call.DepartureStatus)
		event.StopStatus = stopStatus(call)
	}

	if destination, ok := lookupDestination(journey, call).Get(); ok {
		event.Destination = destination
	}

	aimed, aimedOK := event.AimedTime.Get()
	expected, expectedOK := event.ExpectedTime.Get()
	if aimedOK && expectedOK {
		event.DelayMinutes = util.RoundMinutes(expected.Sub(aimed))
	}

	if hasJourney {
		event.DirectionRef = journey.DirectionRef.String()
		event.Occupancy = ParseOccupancy(firstPresent(journey.OccupancyStatus, journey.Occupancy).OrElse(""))
		event.VehicleJourneyRef = lookupVehicleJourneyRef(journey)
		event.JourneyPatternRef = journey.JourneyPatternRef.Lookup()
	}

	return event
}

// ParseOccupancy maps a free text occupancy reading onto a crowd level
func ParseOccupancy(raw string) ctdf.Occupancy {
	lowered := strings.ToLower(raw)
	if lowered == "" {
		return ctdf.OccupancyUnknown
	}

	for _, level := range occupancyKeywords {
		for _, keyword := range level.Keywords {
			if strings.Contains(lowered, keyword) {
				return level.Occupancy
			}
		}
	}

	return ctdf.OccupancyUnknown
}

// Arrival times only stand in when the departure field is missing altogether
func departureOrArrival(departure TextValue, arrival TextValue, location *time.Location) ctdf.Optional[time.Time] {
	parsed := departure.LookupTime(location)
	if parsed.Reason == ctdf.AbsenceFieldMissing {
		return arrival.LookupTime(location)
	}
	return parsed
}

func lookupDestination(journey *MonitoredVehicleJourney, call *MonitoredCall) ctdf.Optional[string] {
	candidates := []TextValue{}
	if call != nil {
		candidates = append(candidates, call.DestinationDisplay)
	}
	if journey != nil {
		candidates = append(candidates, journey.DestinationName)
	}

	return firstPresent(candidates...)
}

func lookupVehicleJourneyRef(journey *MonitoredVehicleJourney) ctdf.Optional[string] {
	candidates := []TextValue{}
	if journey.FramedVehicleJourneyRef != nil {
		candidates = append(candidates, journey.FramedVehicleJourneyRef.DatedVehicleJourneyRef)
	}
	candidates = append(candidates, journey.VehicleJourneyRef, journey.JourneyPatternRef)

	return firstPresent(candidates...)
}

// firstPresent returns the first field with a value. When none has one the reason of the first
// malformed field is preferred over a plain missing field.
func firstPresent(fields ...TextValue) ctdf.Optional[string] {
	reason := ctdf.AbsenceFieldMissing

	for _, field := range fields {
		value := field.Lookup()
		if value.Valid() {
			return value
		}
		if value.Reason == ctdf.AbsenceMalformedField {
			reason = ctdf.AbsenceMalformedField
		}
	}

	return ctdf.Absent[string](reason)
}

func isCancelled(status TextValue) bool {
	return strings.EqualFold(status.String(), "cancelled")
}

func stopStatus(call *MonitoredCall) string {
	texts := []string{}

	for _, field := range []TextValue{call.StopPointStatus, call.ArrivalProximityText} {
		if text, ok := field.Lookup().Get(); ok {
			texts = append(texts, text)
		}
	}

	if call.VehicleAtStop.Lookup().OrElse(false) {
		texts = append(texts, "at stop")
	}

	return strings.Join(texts, " ")
}
