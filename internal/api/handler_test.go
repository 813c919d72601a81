package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/motorfleet-simulator/internal/config"
	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
)

func newTestServer(t *testing.T) (*httptest.Server, *factory.Simulator) {
	t.Helper()

	sim, err := factory.New(factory.Options{
		NumMotors:        2,
		Seed:             1,
		DegradationSpeed: 1,
		NoiseLevel:       1,
		LoadLevel:        1,
		AlertThreshold:   0.40,
		MaxHistory:       500,
	})
	require.NoError(t, err)

	cfg, err := config.Load("")
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewHandler("TestFleet", sim, config.NewRuntimeConfig(cfg)).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, sim
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url, body string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var status StatusResponse
	resp := getJSON(t, srv.URL+"/api/status", &status)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TestFleet", status.SimulatorName)
	assert.Equal(t, 2, status.NumMotors)
	assert.Len(t, status.Motors, 2)
	assert.Equal(t, int64(0), status.Timestep)
}

func TestAdvanceEndpoint(t *testing.T) {
	srv, sim := newTestServer(t)

	var out AdvanceResponse
	resp := postJSON(t, srv.URL+"/api/advance", `{"ticks": 5}`, &out)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(5), out.Timestep)
	assert.Len(t, out.Records, 10)
	assert.Equal(t, int64(5), sim.Clock())
}

func TestAdvanceRejectsBadTickCounts(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/advance", `{"ticks": -1}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/advance", `{"ticks": 999999}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMotorDetailEndpoint(t *testing.T) {
	srv, sim := newTestServer(t)
	sim.Advance(3)

	var detail MotorDetailResponse
	resp := getJSON(t, srv.URL+"/api/motors/1", &detail)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, detail.MotorID)
	assert.Len(t, detail.Records, 3)

	resp = getJSON(t, srv.URL+"/api/motors/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInjectFailureEndpointRaisesAlert(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/motors/0/inject-failure", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var alerts AlertsResponse
	getJSON(t, srv.URL+"/api/alerts", &alerts)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, 0, alerts.Alerts[0].MotorID)
}

func TestMaintenanceEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var out ActionResponse
	resp := postJSON(t, srv.URL+"/api/motors/0/maintenance", `{"type": "lubrication"}`, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out.Status)

	resp = postJSON(t, srv.URL+"/api/motors/0/maintenance", `{"type": "voodoo"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var log MaintenanceLogResponse
	getJSON(t, srv.URL+"/api/maintenance-log", &log)
	require.Len(t, log.Events, 1)
	assert.Equal(t, "lubrication", log.Events[0].Type)
}

func TestConfigRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	var cfg ConfigResponse
	resp := postJSON(t, srv.URL+"/api/config", `{"degradationSpeed": 3.0, "noiseLevel": 0.2}`, &cfg)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3.0, cfg.DegradationSpeed)
	assert.Equal(t, 0.2, cfg.NoiseLevel)

	var readBack ConfigResponse
	getJSON(t, srv.URL+"/api/config", &readBack)
	assert.Equal(t, cfg, readBack)

	resp = postJSON(t, srv.URL+"/api/config", `{"alertThreshold": 7}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
