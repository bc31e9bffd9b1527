package ctdf

import "time"

type StopStateKind string

const (
	StopStateServiceNotStarted StopStateKind = "SERVICE_NOT_STARTED"
	StopStateServiceEnded      StopStateKind = "SERVICE_ENDED"
	StopStateNoData            StopStateKind = "NO_DATA"
	StopStateHasDepartures     StopStateKind = "HAS_DEPARTURES"
)

type Tag string

const (
	TagNone           Tag = "NONE"
	TagFirstDeparture Tag = "FIRST_DEPARTURE"
	TagLastDeparture  Tag = "LAST_DEPARTURE"
	TagImminent       Tag = "IMMINENT"
	TagAtPlatform     Tag = "AT_PLATFORM"
	TagAtStop         Tag = "AT_STOP"
)

// ItineraryUnavailable is shown in place of a journey's calling points when none could be found
const ItineraryUnavailable = "itinerary unavailable"

// StopState is the reconciled view of one stop and direction at a point in time
type StopState struct {
	Key  StopKey       `groups:"basic"`
	Kind StopStateKind `groups:"basic"`

	// Set for SERVICE_NOT_STARTED and SERVICE_ENDED
	FirstDeparture *TimeOfDay `groups:"basic"`

	Schedule StaticSchedule `groups:"detailed"`

	Groups []*DepartureGroup `groups:"basic"`

	GeneratedAt time.Time `groups:"basic"`
	Generation  uint64    `groups:"detailed"`
}

type DepartureGroup struct {
	Destination string `groups:"basic"`

	Headline DepartureHeadline `groups:"basic"`

	Departures []*DeparturePresentation `groups:"basic"`

	Itinerary       string        `groups:"basic"`
	ItineraryReason AbsenceReason `groups:"detailed"`
}

type DepartureHeadline struct {
	DisplayTime  string `groups:"basic"`
	MinutesUntil *int   `groups:"basic"`
}

type DeparturePresentation struct {
	Destination string `groups:"basic"`

	DisplayTime      string `groups:"basic"`
	AimedDisplayTime string `groups:"basic"`
	DelayText        string `groups:"basic"`
	DelayMinutes     int    `groups:"detailed"`

	Tag            Tag       `groups:"basic"`
	CrowdIndicator Occupancy `groups:"basic"`

	MinutesUntil *int `groups:"basic"`

	Cancelled bool `groups:"basic"`
	Late      bool `groups:"basic"`

	StopStatus        string `groups:"detailed"`
	VehicleJourneyRef string `groups:"detailed"`
	JourneyPatternRef string `groups:"internal"`
}
