package ctdf

import (
	"fmt"
	"strings"
)

// Line is one monitored stop on a route, split into its directions of travel
type Line struct {
	ID    string `groups:"basic" yaml:"id" validate:"required"`
	Label string `groups:"basic" yaml:"label"`

	MonitoringRef string `groups:"detailed" yaml:"monitoringRef" validate:"required"`
	LineRef       string `groups:"detailed" yaml:"lineRef" validate:"required"`
	GTFSID        string `groups:"detailed" yaml:"gtfsId" validate:"required"`

	TransportType TransportType `groups:"basic" yaml:"transportType" validate:"required,oneof=Bus Coach Tram Rail Metro"`

	Directions []*LineDirection `groups:"basic" yaml:"directions" validate:"required,min=1,dive"`
}

type LineDirection struct {
	Key   string `groups:"basic" yaml:"key" validate:"required"`
	Label string `groups:"basic" yaml:"label"`

	// DirectionRef values, after NormaliseDirectionRef, that belong to this direction
	Aliases []string `groups:"detailed" yaml:"aliases"`

	// GTFS stop used when generating the first/last fallback for this direction
	GTFSStopID string `groups:"internal" yaml:"gtfsStopId"`

	// Optional GTFS direction_id, for stops served in both directions
	GTFSDirectionID string `groups:"internal" yaml:"gtfsDirectionId" validate:"omitempty,oneof=0 1"`
}

func (l *Line) Key(direction string) StopKey {
	return StopKey{LineID: l.ID, Direction: direction}
}

func (l *Line) GetDirection(key string) *LineDirection {
	for _, direction := range l.Directions {
		if direction.Key == key {
			return direction
		}
	}
	return nil
}

// MatchDirection returns the configured direction for a raw DirectionRef from the live feed
func (l *Line) MatchDirection(directionRef string) *LineDirection {
	normalised := NormaliseDirectionRef(directionRef)

	for _, direction := range l.Directions {
		if normalised == direction.Key {
			return direction
		}
		for _, alias := range direction.Aliases {
			if normalised == NormaliseDirectionRef(alias) {
				return direction
			}
		}
	}

	return nil
}

func NormaliseDirectionRef(directionRef string) string {
	if directionRef == "" {
		return "unk"
	}
	return strings.ToLower(strings.NewReplacer(":", "-", ".", "-").Replace(directionRef))
}

// StopKey identifies one stop and direction of travel
type StopKey struct {
	LineID    string `groups:"basic"`
	Direction string `groups:"basic"`
}

func (k StopKey) String() string {
	return fmt.Sprintf("%s/%s", k.LineID, k.Direction)
}
