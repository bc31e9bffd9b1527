package ctdf

import "time"

// DestinationUnavailable stands in for a visit whose destination could not be read
const DestinationUnavailable = "unavailable"

// LateThresholdMinutes is the delay above which a departure is shown as late
const LateThresholdMinutes = 1

type DepartureEvent struct {
	Destination string

	AimedTime    Optional[time.Time]
	ExpectedTime Optional[time.Time]

	DelayMinutes int
	Cancelled    bool
	Occupancy    Occupancy

	StopStatus string

	DirectionRef      string
	VehicleJourneyRef Optional[string]
	JourneyPatternRef Optional[string]
}

func (e *DepartureEvent) IsLate() bool {
	return e.DelayMinutes > LateThresholdMinutes
}

// DisplayTime is the expected time, falling back to the aimed time when the prediction is unusable
func (e *DepartureEvent) DisplayTime() (time.Time, bool) {
	if e.ExpectedTime.Valid() {
		return e.ExpectedTime.Value, true
	}
	if e.AimedTime.Valid() {
		return e.AimedTime.Value, true
	}
	return time.Time{}, false
}

type Occupancy string

const (
	OccupancyLow     Occupancy = "low"
	OccupancyMedium  Occupancy = "medium"
	OccupancyHigh    Occupancy = "high"
	OccupancyUnknown Occupancy = "unknown"
)
