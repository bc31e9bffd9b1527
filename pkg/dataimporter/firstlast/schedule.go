package firstlast

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/fallback"
	"golang.org/x/exp/slices"
)

const dateFormat = "20060102"

// Schedule holds the parts of a GTFS feed needed to work out first and last departures
type Schedule struct {
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
}

func (s *Schedule) ParseFile(reader io.Reader) error {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	fileMap := map[string]interface{}{
		"trips.txt":          &s.Trips,
		"stop_times.txt":     &s.StopTimes,
		"calendar.txt":       &s.Calendars,
		"calendar_dates.txt": &s.CalendarDates,
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}

	for _, zipFile := range archive.File {
		destination, exists := fileMap[zipFile.Name]
		if !exists {
			log.Debug().Str("file", zipFile.Name).Msg("Skipping gtfs file")
			continue
		}

		log.Info().Str("file", zipFile.Name).Msg("Loading file")

		fileReader, err := zipFile.Open()
		if err != nil {
			return err
		}

		err = gocsv.Unmarshal(fileReader, destination)
		fileReader.Close()
		if err != nil {
			log.Error().Str("file", zipFile.Name).Err(err).Msg("Failed to parse csv file")
			return fmt.Errorf("parsing %s: %w", zipFile.Name, err)
		}
	}

	return nil
}

// ActiveServices returns the service ids running on the given day
func (s *Schedule) ActiveServices(day time.Time) map[string]bool {
	date := day.Format(dateFormat)
	services := map[string]bool{}

	for _, calendar := range s.Calendars {
		if calendar.Active(date, day.Weekday()) {
			services[calendar.ServiceID] = true
		}
	}

	for _, exception := range s.CalendarDates {
		if exception.Date != date {
			continue
		}

		switch exception.ExceptionType {
		case ExceptionServiceAdded:
			services[exception.ServiceID] = true
		case ExceptionServiceRemoved:
			delete(services, exception.ServiceID)
		}
	}

	return services
}

type departure struct {
	Time        string
	DirectionID string
}

// FirstLast builds the first/last document for every configured line and direction on the
// given day. Directions with no departures get a null record.
func (s *Schedule) FirstLast(lines []*ctdf.Line, day time.Time) fallback.FirstLastTable {
	services := s.ActiveServices(day)

	activeTrips := map[string]*Trip{}
	for i := range s.Trips {
		if services[s.Trips[i].ServiceID] {
			activeTrips[s.Trips[i].ID] = &s.Trips[i]
		}
	}

	stopDepartures := map[string][]departure{}
	for _, stopTime := range s.StopTimes {
		trip, active := activeTrips[stopTime.TripID]
		if !active || stopTime.Time() == "" {
			continue
		}

		padded := padTime(stopTime.Time())
		if len(padded) < len("00:00") {
			log.Debug().Str("trip", stopTime.TripID).Str("time", stopTime.Time()).Msg("Skipping malformed stop time")
			continue
		}

		key := trip.RouteID + "/" + stopTime.StopID
		stopDepartures[key] = append(stopDepartures[key], departure{
			Time:        padded,
			DirectionID: trip.DirectionID,
		})
	}

	log.Info().
		Int("services", len(services)).
		Int("trips", len(activeTrips)).
		Int("stops", len(stopDepartures)).
		Msg("Collected departures for day")

	table := fallback.FirstLastTable{}

	for _, line := range lines {
		directions := map[string]*fallback.FirstLastEntry{}

		for _, direction := range line.Directions {
			entry := &fallback.FirstLastEntry{}

			departures := []string{}
			for _, candidate := range stopDepartures[line.GTFSID+"/"+direction.GTFSStopID] {
				if direction.GTFSDirectionID == "" || candidate.DirectionID == direction.GTFSDirectionID {
					departures = append(departures, candidate.Time)
				}
			}

			if direction.GTFSStopID != "" && len(departures) > 0 {
				slices.Sort(departures)

				first := departures[0][:5]
				last := departures[len(departures)-1][:5]
				entry.First = &first
				entry.Last = &last
			}

			directions[direction.Key] = entry
		}

		table[line.GTFSID] = directions
	}

	return table
}

// padTime zero-pads the hour so times sort as strings, "8:05:00" becomes "08:05:00"
func padTime(value string) string {
	value = strings.TrimSpace(value)

	hour, rest, found := strings.Cut(value, ":")
	if !found {
		return value
	}
	if len(hour) < 2 {
		hour = strings.Repeat("0", 2-len(hour)) + hour
	}

	return hour + ":" + rest
}
