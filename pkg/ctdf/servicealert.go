package ctdf

import "time"

// TrafficMessage is a line level disruption notice taken from a general-message feed
type TrafficMessage struct {
	Identifier string `groups:"basic"`
	LineRef    string `groups:"detailed"`

	Text string `groups:"basic"`

	ValidFrom  time.Time `groups:"detailed"`
	ValidUntil time.Time `groups:"detailed"`
}

// IsValid is inclusive at both ends of the validity window
func (m *TrafficMessage) IsValid(checkTime time.Time) bool {
	return !checkTime.Before(m.ValidFrom) && !checkTime.After(m.ValidUntil)
}
