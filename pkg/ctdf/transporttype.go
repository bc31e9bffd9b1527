package ctdf

type TransportType string

//goland:noinspection GoUnusedConst
const (
	TransportTypeBus   TransportType = "Bus"
	TransportTypeCoach TransportType = "Coach"
	TransportTypeTram  TransportType = "Tram"
	TransportTypeRail  TransportType = "Rail"
	TransportTypeMetro TransportType = "Metro"
)

// IsRailMode reports whether departures of this type are shown at a platform
func (t TransportType) IsRailMode() bool {
	return t == TransportTypeRail
}

// IsBusMode reports whether departures of this type are shown at a kerbside stop
func (t TransportType) IsBusMode() bool {
	return t == TransportTypeBus || t == TransportTypeCoach
}
