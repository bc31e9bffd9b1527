package siri_sm

import (
	"github.com/travigo/nextdepartures/pkg/ctdf"
)

// MaxDepartures is the number of upcoming visits kept for each stop and direction
const MaxDepartures = 8

type SiriSM struct {
	Siri struct {
		ServiceDelivery ServiceDelivery
	}
}

type ServiceDelivery struct {
	ResponseTimestamp TextValue
	ProducerRef       TextValue

	StopMonitoringDelivery []*StopMonitoringDelivery
	GeneralMessageDelivery []*GeneralMessageDelivery
}

type StopMonitoringDelivery struct {
	ResponseTimestamp TextValue
	Version           TextValue
	Status            TextValue

	MonitoredStopVisit []*MonitoredStopVisit
}

// Visits is the list of visits in the first stop monitoring delivery, or nil when there is none
func (s *SiriSM) Visits() []*MonitoredStopVisit {
	if s == nil || len(s.Siri.ServiceDelivery.StopMonitoringDelivery) == 0 {
		return nil
	}

	delivery := s.Siri.ServiceDelivery.StopMonitoringDelivery[0]
	if delivery == nil {
		return nil
	}

	return delivery.MonitoredStopVisit
}

type MonitoredStopVisit struct {
	RecordedAtTime TextValue
	ItemIdentifier TextValue
	MonitoringRef  TextValue

	MonitoredVehicleJourney *MonitoredVehicleJourney
}

func (v *MonitoredStopVisit) Journey() ctdf.Optional[*MonitoredVehicleJourney] {
	if v == nil || v.MonitoredVehicleJourney == nil {
		return ctdf.Absent[*MonitoredVehicleJourney](ctdf.AbsenceFieldMissing)
	}
	return ctdf.Present(v.MonitoredVehicleJourney)
}

func (v *MonitoredStopVisit) Call() ctdf.Optional[*MonitoredCall] {
	journey, ok := v.Journey().Get()
	if !ok || journey.MonitoredCall == nil {
		return ctdf.Absent[*MonitoredCall](ctdf.AbsenceFieldMissing)
	}
	return ctdf.Present(journey.MonitoredCall)
}

type MonitoredVehicleJourney struct {
	LineRef           TextValue
	OperatorRef       TextValue
	DirectionRef      TextValue
	DirectionName     TextValue
	PublishedLineName TextValue

	FramedVehicleJourneyRef *struct {
		DataFrameRef           TextValue
		DatedVehicleJourneyRef TextValue
	}
	VehicleJourneyRef  TextValue
	JourneyPatternRef  TextValue
	VehicleJourneyName TextValue

	DestinationRef  TextValue
	DestinationName TextValue

	OccupancyStatus TextValue
	Occupancy       TextValue

	MonitoredCall *MonitoredCall
}

type MonitoredCall struct {
	StopPointName      TextValue
	DestinationDisplay TextValue
	VehicleAtStop      FlagValue

	AimedArrivalTime      TextValue
	ExpectedArrivalTime   TextValue
	AimedDepartureTime    TextValue
	ExpectedDepartureTime TextValue

	ArrivalStatus   TextValue
	DepartureStatus TextValue

	StopPointStatus      TextValue
	ArrivalProximityText TextValue

	ArrivalPlatformName TextValue
}
