package fallback

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/ctdf"
)

// FirstLastEntry is one record of the first/last document. The generator writes null for a
// stop with no departures today.
type FirstLastEntry struct {
	First *string `json:"first"`
	Last  *string `json:"last"`
}

// FirstLastTable maps GTFS line id and direction to the day's first and last departure
type FirstLastTable map[string]map[string]*FirstLastEntry

// StopsTable maps GTFS line id and direction to the ordered names of the stops served
type StopsTable map[string]map[string][]string

// Dataset is an immutable snapshot of the static fallback documents
type Dataset struct {
	FirstLast FirstLastTable
	Stops     StopsTable
}

func EmptyDataset() *Dataset {
	return &Dataset{
		FirstLast: FirstLastTable{},
		Stops:     StopsTable{},
	}
}

func ParseFirstLast(data []byte) (FirstLastTable, error) {
	table := FirstLastTable{}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decoding first/last document: %w", err)
	}
	return table, nil
}

func ParseStops(data []byte) (StopsTable, error) {
	table := StopsTable{}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decoding stops document: %w", err)
	}
	return table, nil
}

func (t FirstLastTable) lookup(gtfsID string, direction string) ctdf.StaticSchedule {
	entry := t[gtfsID][direction]
	if entry == nil || entry.First == nil || entry.Last == nil {
		return ctdf.StaticSchedule{}
	}

	first, err := ctdf.ParseTimeOfDay(*entry.First)
	if err != nil {
		log.Debug().Err(err).Str("gtfsid", gtfsID).Str("direction", direction).Msg("Ignoring malformed first departure")
		return ctdf.StaticSchedule{}
	}
	last, err := ctdf.ParseTimeOfDay(*entry.Last)
	if err != nil {
		log.Debug().Err(err).Str("gtfsid", gtfsID).Str("direction", direction).Msg("Ignoring malformed last departure")
		return ctdf.StaticSchedule{}
	}

	return ctdf.NewStaticSchedule(&first, &last)
}
