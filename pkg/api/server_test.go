package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/dataaggregator"
	"github.com/travigo/nextdepartures/pkg/fallback"
	"github.com/travigo/nextdepartures/pkg/prim"
	"github.com/travigo/nextdepartures/pkg/siri_sm"
)

const liveDocument = `{"Siri":{"ServiceDelivery":{"StopMonitoringDelivery":[{"MonitoredStopVisit":[
	{"MonitoredVehicleJourney":{"DirectionRef":"up","OccupancyStatus":"fullyOccupied","MonitoredCall":{
		"DestinationDisplay":[{"value":"Hippodrome"}],
		"AimedDepartureTime":"2024-03-12T08:10:00Z",
		"ExpectedDepartureTime":"2024-03-12T08:10:00Z"}}}
]}]}}}`

type testFeed struct{}

func (testFeed) StopMonitoring(ctx context.Context, monitoringRef string) (*siri_sm.SiriSM, error) {
	var document siri_sm.SiriSM
	err := json.Unmarshal([]byte(liveDocument), &document)
	return &document, err
}

func (testFeed) GeneralMessage(ctx context.Context, lineRef string) (*siri_sm.SiriSM, error) {
	return nil, errors.New("unreachable")
}

func (testFeed) JourneyPattern(ctx context.Context, journeyPatternRef string) (*prim.JourneyPattern, error) {
	return nil, errors.New("unreachable")
}

type emptyLoader struct{}

func (emptyLoader) Load(ctx context.Context) (*fallback.Dataset, error) {
	return fallback.EmptyDataset(), nil
}

func testApp(t *testing.T, refresh bool) *dataaggregator.Reconciler {
	t.Helper()

	line := &ctdf.Line{
		ID:            "bus-77",
		Label:         "Bus 77",
		MonitoringRef: "STIF:StopArea:SP:463641:",
		LineRef:       "STIF:Line::C01777:",
		GTFSID:        "BUS-77",
		TransportType: ctdf.TransportTypeBus,
		Directions:    []*ctdf.LineDirection{{Key: "up"}, {Key: "down"}},
	}

	reconciler := dataaggregator.NewReconciler([]*ctdf.Line{line}, testFeed{}, fallback.NewCache(emptyLoader{}, fallback.DefaultTTL), time.UTC)
	reconciler.Now = func() time.Time { return time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC) }

	if refresh {
		reconciler.RefreshLine(context.Background(), line)
	}

	return reconciler
}

func get(t *testing.T, reconciler *dataaggregator.Reconciler, path string) (int, map[string]any) {
	t.Helper()

	resp, err := NewApp(reconciler).Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &decoded))
	}

	return resp.StatusCode, decoded
}

func TestVersion(t *testing.T) {
	status, body := get(t, testApp(t, false), "/core/version")
	assert.Equal(t, 200, status)
	assert.Equal(t, "v0.1", body["version"])
}

func TestDirectionDepartures(t *testing.T) {
	reconciler := testApp(t, true)

	status, body := get(t, reconciler, "/core/lines/bus-77/departures/up")
	require.Equal(t, 200, status)
	assert.Equal(t, "HAS_DEPARTURES", body["Kind"])
	assert.NotContains(t, body, "Generation")

	groups := body["Groups"].([]any)
	require.Len(t, groups, 1)
	group := groups[0].(map[string]any)
	assert.Equal(t, "Hippodrome", group["Destination"])
	assert.Equal(t, ctdf.ItineraryUnavailable, group["Itinerary"])

	departure := group["Departures"].([]any)[0].(map[string]any)
	assert.Equal(t, "08:10", departure["DisplayTime"])
	assert.Equal(t, "high", departure["CrowdIndicator"])
	assert.Equal(t, float64(10), departure["MinutesUntil"])
	assert.NotContains(t, departure, "JourneyPatternRef")

	status, body = get(t, reconciler, "/core/lines/bus-77/departures/down")
	require.Equal(t, 200, status)
	assert.Equal(t, "NO_DATA", body["Kind"])

	status, body = get(t, reconciler, "/core/lines/bus-77/departures/up?detail=full")
	require.Equal(t, 200, status)
	assert.Equal(t, float64(1), body["Generation"])
}

func TestLineDepartures(t *testing.T) {
	status, body := get(t, testApp(t, true), "/core/lines/bus-77/departures")
	require.Equal(t, 200, status)

	assert.Len(t, body["Directions"].([]any), 2)
	assert.Empty(t, body["TrafficMessages"])
	assert.Equal(t, "bus-77", body["Line"].(map[string]any)["ID"])
}

func TestDepartureErrors(t *testing.T) {
	reconciler := testApp(t, false)

	status, body := get(t, reconciler, "/core/lines/metro-1/departures")
	assert.Equal(t, 404, status)
	assert.NotEmpty(t, body["error"])

	status, _ = get(t, reconciler, "/core/lines/bus-77/departures/sideways")
	assert.Equal(t, 404, status)

	status, _ = get(t, reconciler, "/core/lines/bus-77/departures/up")
	assert.Equal(t, 503, status)
}

func TestListLines(t *testing.T) {
	resp, err := NewApp(testApp(t, false)).Test(httptest.NewRequest("GET", "/core/lines", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var lines []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "bus-77", lines[0]["ID"])
	assert.NotContains(t, lines[0], "MonitoringRef")
}
