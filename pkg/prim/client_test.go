package prim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stopMonitoringBody = `{"Siri":{"ServiceDelivery":{"StopMonitoringDelivery":[{"MonitoredStopVisit":[
	{"MonitoredVehicleJourney":{"DirectionRef":{"value":"up"},"MonitoredCall":{"DestinationDisplay":[{"value":"Gare"}]}}}
]}]}}}`

func TestStopMonitoring(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/marketplace/stop-monitoring", r.URL.Path)
		assert.Equal(t, "STIF:StopArea:SP:43135:", r.URL.Query().Get("MonitoringRef"))
		assert.Equal(t, "secret", r.Header.Get("apikey"))

		w.Write([]byte(stopMonitoringBody))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/marketplace/", "", "secret", time.Second)

	document, err := client.StopMonitoring(context.Background(), "STIF:StopArea:SP:43135:")
	require.NoError(t, err)
	require.Len(t, document.Visits(), 1)
	assert.Equal(t, "Gare", document.Visits()[0].MonitoredVehicleJourney.MonitoredCall.DestinationDisplay.String())
}

func TestProxyPrefix(t *testing.T) {
	var proxied string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied = r.URL.Query().Get("url")
		w.Write([]byte(`{"id":"jp","stopPoints":[{"name":"A"},{"name":" "},{"name":"B"}]}`))
	}))
	defer server.Close()

	client := NewClient("https://prim.example/marketplace", server.URL+"/?url=", "", time.Second)

	journeyPattern, err := client.JourneyPattern(context.Background(), "RATP:JourneyPattern::A")
	require.NoError(t, err)

	target, err := url.Parse(proxied)
	require.NoError(t, err)
	assert.Equal(t, "prim.example", target.Host)
	assert.Equal(t, "/marketplace/journey-patterns/RATP:JourneyPattern::A", target.Path)

	stops, ok := journeyPattern.StopNames().Get()
	require.True(t, ok)
	assert.Equal(t, "A ➔ B", FormatItinerary(stops))
}

func TestFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stop-monitoring":
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("quota exceeded"))
		default:
			w.Write([]byte("{not json"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", time.Second)

	_, err := client.StopMonitoring(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = client.GeneralMessage(context.Background(), "line")
	assert.Error(t, err)

	unreachable := NewClient("http://127.0.0.1:1", "", "", 200*time.Millisecond)
	_, err = unreachable.StopMonitoring(context.Background(), "ref")
	assert.Error(t, err)
}

func TestStopNamesNeedsTwoStops(t *testing.T) {
	journeyPattern := &JourneyPattern{}
	assert.False(t, journeyPattern.StopNames().Valid())

	var missing *JourneyPattern
	assert.False(t, missing.StopNames().Valid())
}
