package departureboard

import (
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/util"
)

var atPlatformKeywords = []string{"arrivée", "en gare", "at stop", "stopped"}
var atStopKeywords = []string{"at stop", "stopped"}

type tagInput struct {
	Event         *ctdf.DepartureEvent
	AimedDisplay  string
	MinutesUntil  *int
	Schedule      ctdf.StaticSchedule
	TransportType ctdf.TransportType
}

type tagRule struct {
	Tag   ctdf.Tag
	Match func(input *tagInput) bool
}

// Evaluated top to bottom, the last matching rule sets the tag
var tagRules = []tagRule{
	{
		Tag:   ctdf.TagNone,
		Match: func(input *tagInput) bool { return true },
	},
	{
		Tag: ctdf.TagFirstDeparture,
		Match: func(input *tagInput) bool {
			return input.Schedule.First != nil && input.AimedDisplay != "" && input.AimedDisplay == input.Schedule.First.String()
		},
	},
	{
		Tag: ctdf.TagLastDeparture,
		Match: func(input *tagInput) bool {
			return input.Schedule.Last != nil && input.AimedDisplay != "" && input.AimedDisplay == input.Schedule.Last.String()
		},
	},
	{
		Tag: ctdf.TagImminent,
		Match: func(input *tagInput) bool {
			return input.MinutesUntil != nil && *input.MinutesUntil > 0 && *input.MinutesUntil < 2
		},
	},
	{
		Tag: ctdf.TagAtPlatform,
		Match: func(input *tagInput) bool {
			return input.TransportType.IsRailMode() && util.ContainsAnyFold(input.Event.StopStatus, atPlatformKeywords)
		},
	},
	{
		Tag: ctdf.TagAtStop,
		Match: func(input *tagInput) bool {
			return input.TransportType.IsBusMode() && util.ContainsAnyFold(input.Event.StopStatus, atStopKeywords)
		},
	},
}

func evaluateTag(rules []tagRule, input *tagInput) ctdf.Tag {
	tag := ctdf.TagNone

	for _, rule := range rules {
		if rule.Match(input) {
			tag = rule.Tag
		}
	}

	return tag
}
