package siri_sm

import (
	"time"

	"github.com/travigo/nextdepartures/pkg/ctdf"
)

type GeneralMessageDelivery struct {
	ResponseTimestamp TextValue
	Version           TextValue

	InfoMessage []*InfoMessage
}

type InfoMessage struct {
	InfoMessageIdentifier TextValue
	InfoChannelRef        TextValue
	RecordedAtTime        TextValue
	ValidUntilTime        TextValue

	ValidityPeriod *struct {
		StartTime TextValue
		EndTime   TextValue
	}

	Message *struct {
		Text TextValue
	}

	Content *struct {
		LineRef []TextValue
		Message []*struct {
			MessageType TextValue
			MessageText TextValue
		}
	}
}

// InfoMessages is the list of messages in the first general message delivery
func (s *SiriSM) InfoMessages() []*InfoMessage {
	if s == nil || len(s.Siri.ServiceDelivery.GeneralMessageDelivery) == 0 {
		return nil
	}

	delivery := s.Siri.ServiceDelivery.GeneralMessageDelivery[0]
	if delivery == nil {
		return nil
	}

	return delivery.InfoMessage
}

func (m *InfoMessage) text() ctdf.Optional[string] {
	if m.Message != nil {
		if text, ok := m.Message.Text.Lookup().Get(); ok {
			return ctdf.Present(text)
		}
	}

	if m.Content != nil {
		for _, message := range m.Content.Message {
			if message == nil {
				continue
			}
			if text, ok := message.MessageText.Lookup().Get(); ok {
				return ctdf.Present(text)
			}
		}
	}

	return ctdf.Absent[string](ctdf.AbsenceFieldMissing)
}

func (m *InfoMessage) validity(location *time.Location) (ctdf.Optional[time.Time], ctdf.Optional[time.Time]) {
	if m.ValidityPeriod != nil {
		return m.ValidityPeriod.StartTime.LookupTime(location), m.ValidityPeriod.EndTime.LookupTime(location)
	}
	return m.RecordedAtTime.LookupTime(location), m.ValidUntilTime.LookupTime(location)
}

// TrafficMessage converts the message, returning false when it has no text or no usable
// validity window. Timestamps without an offset are read in location.
func (m *InfoMessage) TrafficMessage(lineRef string, location *time.Location) (*ctdf.TrafficMessage, bool) {
	text, ok := m.text().Get()
	if !ok {
		return nil, false
	}

	start, end := m.validity(location)
	if !start.Valid() || !end.Valid() {
		return nil, false
	}

	return &ctdf.TrafficMessage{
		Identifier: m.InfoMessageIdentifier.String(),
		LineRef:    lineRef,
		Text:       text,
		ValidFrom:  start.Value,
		ValidUntil: end.Value,
	}, true
}

// ActiveTrafficMessages returns the messages whose validity window contains now
func (s *SiriSM) ActiveTrafficMessages(lineRef string, now time.Time) []*ctdf.TrafficMessage {
	messages := []*ctdf.TrafficMessage{}

	for _, infoMessage := range s.InfoMessages() {
		if infoMessage == nil {
			continue
		}

		message, ok := infoMessage.TrafficMessage(lineRef, now.Location())
		if ok && message.IsValid(now) {
			messages = append(messages, message)
		}
	}

	return messages
}
