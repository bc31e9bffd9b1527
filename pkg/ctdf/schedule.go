package ctdf

import "time"

// StaticSchedule is the first and last scheduled departure of the day for one stop and direction.
// Both ends are set or neither is.
type StaticSchedule struct {
	First *TimeOfDay `groups:"basic"`
	Last  *TimeOfDay `groups:"basic"`
}

func NewStaticSchedule(first, last *TimeOfDay) StaticSchedule {
	if first == nil || last == nil {
		return StaticSchedule{}
	}
	return StaticSchedule{First: first, Last: last}
}

func (s StaticSchedule) Present() bool {
	return s.First != nil && s.Last != nil
}

// Window resolves the schedule against the calendar day of now. The last departure is moved onto
// the following day when it falls before the first one, so 05:30 to 00:40 spans midnight. Before
// today's first departure, yesterday's window is used while it is still running.
func (s StaticSchedule) Window(now time.Time) (time.Time, time.Time, bool) {
	if !s.Present() {
		return time.Time{}, time.Time{}, false
	}

	first, last := s.windowOn(now)
	if now.Before(first) {
		previousFirst, previousLast := s.windowOn(now.AddDate(0, 0, -1))
		if !now.After(previousLast) {
			return previousFirst, previousLast, true
		}
	}

	return first, last, true
}

func (s StaticSchedule) windowOn(day time.Time) (time.Time, time.Time) {
	first := s.First.On(day)
	last := s.Last.On(day)
	if last.Before(first) {
		last = last.AddDate(0, 0, 1)
	}

	return first, last
}
