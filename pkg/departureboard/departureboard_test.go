package departureboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/nextdepartures/pkg/ctdf"

	_ "time/tzdata"
)

var paris, _ = time.LoadLocation("Europe/Paris")

func tod(value string) *ctdf.TimeOfDay {
	parsed, err := ctdf.ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func schedule(first, last string) ctdf.StaticSchedule {
	return ctdf.NewStaticSchedule(tod(first), tod(last))
}

func event(destination string, aimed time.Time, expected time.Time) *ctdf.DepartureEvent {
	return &ctdf.DepartureEvent{
		Destination:  destination,
		AimedTime:    ctdf.Present(aimed),
		ExpectedTime: ctdf.Present(expected),
		DelayMinutes: int(expected.Sub(aimed).Minutes() + 0.5),
		Occupancy:    ctdf.OccupancyUnknown,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 12, hour, minute, 0, 0, paris)
}

func TestEmptyEventsAgainstSchedule(t *testing.T) {
	fallback := schedule("05:30", "23:50")

	state := GenerateStopState(nil, fallback, ctdf.TransportTypeRail, at(4, 0))
	assert.Equal(t, ctdf.StopStateServiceNotStarted, state.Kind)
	require.NotNil(t, state.FirstDeparture)
	assert.Equal(t, "05:30", state.FirstDeparture.String())

	state = GenerateStopState([]*ctdf.DepartureEvent{}, fallback, ctdf.TransportTypeRail, at(23, 55))
	assert.Equal(t, ctdf.StopStateServiceEnded, state.Kind)
	assert.Equal(t, "05:30", state.FirstDeparture.String())

	state = GenerateStopState(nil, fallback, ctdf.TransportTypeRail, at(12, 0))
	assert.Equal(t, ctdf.StopStateNoData, state.Kind)
	assert.Nil(t, state.FirstDeparture)
}

func TestEmptyEventsWithoutSchedule(t *testing.T) {
	for _, now := range []time.Time{at(0, 1), at(4, 0), at(12, 0), at(23, 59)} {
		state := GenerateStopState(nil, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)
		assert.Equal(t, ctdf.StopStateNoData, state.Kind)
		assert.Empty(t, state.Groups)
	}

	partial := ctdf.StaticSchedule{First: tod("05:30")}
	state := GenerateStopState(nil, partial, ctdf.TransportTypeBus, at(4, 0))
	assert.Equal(t, ctdf.StopStateNoData, state.Kind)
}

func TestEmptyEventsScheduleAfterMidnight(t *testing.T) {
	fallback := schedule("05:30", "00:40")

	state := GenerateStopState(nil, fallback, ctdf.TransportTypeRail, at(23, 55))
	assert.Equal(t, ctdf.StopStateNoData, state.Kind)

	state = GenerateStopState(nil, fallback, ctdf.TransportTypeRail, at(0, 20))
	assert.Equal(t, ctdf.StopStateNoData, state.Kind)

	state = GenerateStopState(nil, fallback, ctdf.TransportTypeRail, at(1, 0))
	assert.Equal(t, ctdf.StopStateServiceNotStarted, state.Kind)

	// a regular schedule does not carry over past midnight
	state = GenerateStopState(nil, schedule("05:30", "23:50"), ctdf.TransportTypeRail, at(0, 20))
	assert.Equal(t, ctdf.StopStateServiceNotStarted, state.Kind)
}

func TestGroupingIsStable(t *testing.T) {
	now := at(8, 0)
	a := event("X", at(8, 5), at(8, 5))
	b := event("Y", at(8, 6), at(8, 6))
	c := event("X", at(8, 7), at(8, 7))

	state := GenerateStopState([]*ctdf.DepartureEvent{a, b, c}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)

	assert.Equal(t, ctdf.StopStateHasDepartures, state.Kind)
	require.Len(t, state.Groups, 2)
	assert.Equal(t, "X", state.Groups[0].Destination)
	assert.Equal(t, "Y", state.Groups[1].Destination)

	require.Len(t, state.Groups[0].Departures, 2)
	assert.Equal(t, "08:05", state.Groups[0].Departures[0].DisplayTime)
	assert.Equal(t, "08:07", state.Groups[0].Departures[1].DisplayTime)

	assert.Equal(t, "08:05", state.Groups[0].Headline.DisplayTime)
	require.NotNil(t, state.Groups[0].Headline.MinutesUntil)
	assert.Equal(t, 5, *state.Groups[0].Headline.MinutesUntil)
}

func TestHeadlineClampAndUnknown(t *testing.T) {
	now := at(8, 0)

	departed := event("X", at(7, 55), at(7, 58))
	state := GenerateStopState([]*ctdf.DepartureEvent{departed}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)
	assert.Equal(t, 0, *state.Groups[0].Headline.MinutesUntil)

	noPrediction := &ctdf.DepartureEvent{
		Destination:  "Y",
		AimedTime:    ctdf.Present(at(8, 10)),
		ExpectedTime: ctdf.Absent[time.Time](ctdf.AbsenceMalformedField),
	}
	state = GenerateStopState([]*ctdf.DepartureEvent{noPrediction}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)
	assert.Nil(t, state.Groups[0].Headline.MinutesUntil)
	assert.Equal(t, "08:10", state.Groups[0].Headline.DisplayTime)

	noTimes := &ctdf.DepartureEvent{
		Destination:  "Z",
		AimedTime:    ctdf.Absent[time.Time](ctdf.AbsenceFieldMissing),
		ExpectedTime: ctdf.Absent[time.Time](ctdf.AbsenceFieldMissing),
	}
	state = GenerateStopState([]*ctdf.DepartureEvent{noTimes}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)
	assert.Equal(t, UnknownDisplayTime, state.Groups[0].Departures[0].DisplayTime)
	assert.Equal(t, ctdf.TagNone, state.Groups[0].Departures[0].Tag)
}

func TestFirstDepartureEndToEnd(t *testing.T) {
	departure := at(5, 42)
	now := departure.Add(-10 * time.Minute)

	state := GenerateStopState(
		[]*ctdf.DepartureEvent{event("Gare", departure, departure)},
		schedule(ctdf.ClockString(departure), "23:00"),
		ctdf.TransportTypeRail,
		now,
	)

	require.Equal(t, ctdf.StopStateHasDepartures, state.Kind)
	presentation := state.Groups[0].Departures[0]
	assert.Equal(t, ctdf.TagFirstDeparture, presentation.Tag)
	assert.False(t, presentation.Cancelled)
	assert.False(t, presentation.Late)
	assert.Empty(t, presentation.DelayText)
	assert.Empty(t, presentation.AimedDisplayTime)
	assert.Equal(t, "05:42", presentation.DisplayTime)
}

func TestLastDepartureWinsOverFirst(t *testing.T) {
	departure := at(23, 10)

	state := GenerateStopState(
		[]*ctdf.DepartureEvent{event("Gare", departure, departure)},
		schedule("23:10", "23:10"),
		ctdf.TransportTypeBus,
		departure.Add(-20*time.Minute),
	)

	assert.Equal(t, ctdf.TagLastDeparture, state.Groups[0].Departures[0].Tag)
}

func TestImminentAndStopStatusPrecedence(t *testing.T) {
	now := at(8, 0)
	soon := event("Gare", at(8, 1), at(8, 1))

	state := GenerateStopState([]*ctdf.DepartureEvent{soon}, schedule("08:01", "23:00"), ctdf.TransportTypeBus, now)
	assert.Equal(t, ctdf.TagImminent, state.Groups[0].Departures[0].Tag)

	soon.StopStatus = "Bus STOPPED"
	state = GenerateStopState([]*ctdf.DepartureEvent{soon}, schedule("08:01", "23:00"), ctdf.TransportTypeBus, now)
	assert.Equal(t, ctdf.TagAtStop, state.Groups[0].Departures[0].Tag)

	state = GenerateStopState([]*ctdf.DepartureEvent{soon}, schedule("08:01", "23:00"), ctdf.TransportTypeRail, now)
	assert.Equal(t, ctdf.TagAtPlatform, state.Groups[0].Departures[0].Tag)

	soon.StopStatus = "Arrivée"
	state = GenerateStopState([]*ctdf.DepartureEvent{soon}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)
	assert.Equal(t, ctdf.TagImminent, state.Groups[0].Departures[0].Tag)

	state = GenerateStopState([]*ctdf.DepartureEvent{soon}, ctdf.StaticSchedule{}, ctdf.TransportTypeTram, now)
	assert.Equal(t, ctdf.TagImminent, state.Groups[0].Departures[0].Tag)

	departing := event("Gare", at(8, 0), at(8, 0))
	state = GenerateStopState([]*ctdf.DepartureEvent{departing}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)
	assert.Equal(t, ctdf.TagNone, state.Groups[0].Departures[0].Tag)
}

func TestCancelledKeepsPlace(t *testing.T) {
	now := at(8, 0)
	cancelled := event("Gare", at(8, 5), at(8, 9))
	cancelled.Cancelled = true
	cancelled.Occupancy = ctdf.OccupancyHigh
	cancelled.StopStatus = "at stop"
	following := event("Gare", at(8, 15), at(8, 15))

	state := GenerateStopState([]*ctdf.DepartureEvent{cancelled, following}, schedule("08:05", "23:00"), ctdf.TransportTypeBus, now)

	require.Len(t, state.Groups[0].Departures, 2)
	presentation := state.Groups[0].Departures[0]
	assert.True(t, presentation.Cancelled)
	assert.Equal(t, ctdf.TagNone, presentation.Tag)
	assert.Empty(t, presentation.CrowdIndicator)
	assert.Equal(t, "08:05", presentation.AimedDisplayTime)
	assert.Equal(t, "08:05", presentation.DisplayTime)
	assert.Equal(t, "Gare", presentation.Destination)
}

func TestLateRendering(t *testing.T) {
	now := at(8, 0)
	late := event("Gare", at(8, 10), at(8, 13))
	late.Occupancy = ctdf.OccupancyMedium
	slight := event("Gare", at(8, 20), at(8, 21))

	state := GenerateStopState([]*ctdf.DepartureEvent{late, slight}, ctdf.StaticSchedule{}, ctdf.TransportTypeBus, now)

	latePresentation := state.Groups[0].Departures[0]
	assert.True(t, latePresentation.Late)
	assert.Equal(t, "08:10", latePresentation.AimedDisplayTime)
	assert.Equal(t, "08:13", latePresentation.DisplayTime)
	assert.Equal(t, "+3 min", latePresentation.DelayText)
	assert.Equal(t, ctdf.OccupancyMedium, latePresentation.CrowdIndicator)

	onTime := state.Groups[0].Departures[1]
	assert.False(t, onTime.Late)
	assert.Empty(t, onTime.AimedDisplayTime)
	assert.Equal(t, "08:21", onTime.DisplayTime)
}

func TestDisplayUsesNowLocation(t *testing.T) {
	now := at(8, 0)
	utcDeparture := time.Date(2024, 3, 12, 7, 30, 0, 0, time.UTC)

	state := GenerateStopState([]*ctdf.DepartureEvent{event("Gare", utcDeparture, utcDeparture)}, schedule("08:30", "23:00"), ctdf.TransportTypeBus, now)

	presentation := state.Groups[0].Departures[0]
	assert.Equal(t, "08:30", presentation.DisplayTime)
	assert.Equal(t, ctdf.TagFirstDeparture, presentation.Tag)
}

func TestTagRulesInIsolation(t *testing.T) {
	input := &tagInput{Event: &ctdf.DepartureEvent{}}

	rules := []tagRule{
		{Tag: ctdf.TagImminent, Match: func(*tagInput) bool { return true }},
		{Tag: ctdf.TagFirstDeparture, Match: func(*tagInput) bool { return true }},
		{Tag: ctdf.TagAtStop, Match: func(*tagInput) bool { return false }},
	}
	assert.Equal(t, ctdf.TagFirstDeparture, evaluateTag(rules, input))
	assert.Equal(t, ctdf.TagNone, evaluateTag(nil, input))
	assert.Equal(t, ctdf.TagNone, evaluateTag(tagRules, input))
}
