package departureboard

import (
	"fmt"
	"time"

	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/util"
)

// UnknownDisplayTime is shown when a departure has neither an expected nor an aimed time
const UnknownDisplayTime = "--:--"

// GenerateStopState merges normalised live departures with the static first/last schedule into
// the state shown for one stop and direction. Clock times are rendered in now's location.
func GenerateStopState(events []*ctdf.DepartureEvent, schedule ctdf.StaticSchedule, transportType ctdf.TransportType, now time.Time) *ctdf.StopState {
	stopState := &ctdf.StopState{
		Schedule:    schedule,
		GeneratedAt: now,
		Groups:      []*ctdf.DepartureGroup{},
	}

	if len(events) == 0 {
		stopState.Kind = emptyStateKind(schedule, now)
		if stopState.Kind != ctdf.StopStateNoData {
			first := *schedule.First
			stopState.FirstDeparture = &first
		}

		return stopState
	}

	stopState.Kind = ctdf.StopStateHasDepartures

	groupIndex := map[string]*ctdf.DepartureGroup{}
	for _, event := range events {
		if event == nil {
			continue
		}

		group, exists := groupIndex[event.Destination]
		if !exists {
			group = &ctdf.DepartureGroup{
				Destination: event.Destination,
				Headline:    generateHeadline(event, now),
				Departures:  []*ctdf.DeparturePresentation{},
			}
			groupIndex[event.Destination] = group
			stopState.Groups = append(stopState.Groups, group)
		}

		group.Departures = append(group.Departures, generatePresentation(event, schedule, transportType, now))
	}

	return stopState
}

func emptyStateKind(schedule ctdf.StaticSchedule, now time.Time) ctdf.StopStateKind {
	first, last, ok := schedule.Window(now)

	switch {
	case !ok:
		return ctdf.StopStateNoData
	case now.Before(first):
		return ctdf.StopStateServiceNotStarted
	case now.After(last):
		return ctdf.StopStateServiceEnded
	default:
		return ctdf.StopStateNoData
	}
}

func generateHeadline(event *ctdf.DepartureEvent, now time.Time) ctdf.DepartureHeadline {
	return ctdf.DepartureHeadline{
		DisplayTime:  displayTime(event, now),
		MinutesUntil: clampedMinutesUntil(event, now),
	}
}

func generatePresentation(event *ctdf.DepartureEvent, schedule ctdf.StaticSchedule, transportType ctdf.TransportType, now time.Time) *ctdf.DeparturePresentation {
	aimedDisplay := ""
	if aimed, ok := event.AimedTime.Get(); ok {
		aimedDisplay = ctdf.ClockString(aimed.In(now.Location()))
	}

	remaining := minutesUntil(event, now)

	presentation := &ctdf.DeparturePresentation{
		Destination:       event.Destination,
		DisplayTime:       displayTime(event, now),
		DelayMinutes:      event.DelayMinutes,
		MinutesUntil:      clampedMinutesUntil(event, now),
		StopStatus:        event.StopStatus,
		VehicleJourneyRef: event.VehicleJourneyRef.OrElse(""),
		JourneyPatternRef: event.JourneyPatternRef.OrElse(""),
	}

	if event.Cancelled {
		presentation.Cancelled = true
		presentation.Tag = ctdf.TagNone
		presentation.AimedDisplayTime = aimedDisplay
		if aimedDisplay != "" {
			presentation.DisplayTime = aimedDisplay
		}

		return presentation
	}

	presentation.CrowdIndicator = event.Occupancy
	presentation.Tag = evaluateTag(tagRules, &tagInput{
		Event:         event,
		AimedDisplay:  aimedDisplay,
		MinutesUntil:  remaining,
		Schedule:      schedule,
		TransportType: transportType,
	})

	if event.IsLate() {
		presentation.Late = true
		presentation.AimedDisplayTime = aimedDisplay
		presentation.DelayText = fmt.Sprintf("+%d min", event.DelayMinutes)
	}

	return presentation
}

func displayTime(event *ctdf.DepartureEvent, now time.Time) string {
	if t, ok := event.DisplayTime(); ok {
		return ctdf.ClockString(t.In(now.Location()))
	}
	return UnknownDisplayTime
}

// minutesUntil is unclamped and nil when there is no usable expected time
func minutesUntil(event *ctdf.DepartureEvent, now time.Time) *int {
	expected, ok := event.ExpectedTime.Get()
	if !ok {
		return nil
	}

	minutes := util.RoundMinutes(expected.Sub(now))
	return &minutes
}

func clampedMinutesUntil(event *ctdf.DepartureEvent, now time.Time) *int {
	expected, ok := event.ExpectedTime.Get()
	if !ok {
		return nil
	}

	minutes := util.MinutesUntil(now, expected)
	return &minutes
}
