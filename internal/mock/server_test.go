package mock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/liftload/internal/types"
)

func newTestServer(t *testing.T, cfg *Config) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(cfg, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postRide(t *testing.T, baseURL string, ride types.LiftRide) *http.Response {
	t.Helper()
	body, err := json.Marshal(ride)
	require.NoError(t, err)
	resp, err := http.Post(baseURL+"/skiers/liftrides", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_PostThenRead(t *testing.T) {
	srv, ts := newTestServer(t, DefaultConfig())

	ride := types.LiftRide{ResortID: "Silver Mt", DayID: 1, SkierID: 7, Time: 30, LiftID: 4}
	resp := postRide(t, ts.URL, ride)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ride.DayID = 2
	ride.LiftID = 3
	postRide(t, ts.URL, ride)
	assert.Equal(t, int64(2), srv.Store().Rides())

	dayResp, err := http.Get(ts.URL + "/skiers/Silver%20Mt/days/1/skiers/7")
	require.NoError(t, err)
	defer dayResp.Body.Close()
	require.Equal(t, http.StatusOK, dayResp.StatusCode)

	var day VerticalResponse
	require.NoError(t, json.NewDecoder(dayResp.Body).Decode(&day))
	assert.Equal(t, VerticalResponse{ResortID: "Silver Mt", SkierID: 7, DayID: 1, Vertical: 40}, day)

	totalResp, err := http.Get(ts.URL + "/skiers/7/vertical?resort=Silver%20Mt")
	require.NoError(t, err)
	defer totalResp.Body.Close()
	require.Equal(t, http.StatusOK, totalResp.StatusCode)

	var total VerticalResponse
	require.NoError(t, json.NewDecoder(totalResp.Body).Decode(&total))
	assert.Equal(t, 70, total.Vertical)
}

func TestServer_UnknownSkierReadsZero(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	resp, err := http.Get(ts.URL + "/skiers/42/vertical?resort=SilverMt")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var v VerticalResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Zero(t, v.Vertical)
}

func TestServer_RejectsInvalidRequests(t *testing.T) {
	_, ts := newTestServer(t, DefaultConfig())

	tests := []struct {
		name string
		ride types.LiftRide
	}{
		{"missing resort", types.LiftRide{DayID: 1, SkierID: 1, Time: 1, LiftID: 1}},
		{"day out of range", types.LiftRide{ResortID: "r", DayID: 400, SkierID: 1, Time: 1, LiftID: 1}},
		{"time past closing", types.LiftRide{ResortID: "r", DayID: 1, SkierID: 1, Time: 421, LiftID: 1}},
		{"no lift", types.LiftRide{ResortID: "r", DayID: 1, SkierID: 1, Time: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRide(t, ts.URL, tt.ride)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := http.Post(ts.URL+"/skiers/liftrides", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/skiers/SilverMt/days/0/skiers/1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/skiers/1/vertical")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_FailureRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureRate = 1
	srv, ts := newTestServer(t, cfg)

	resp := postRide(t, ts.URL, types.LiftRide{ResortID: "r", DayID: 1, SkierID: 1, Time: 1, LiftID: 1})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, srv.Store().Rides())
}

func TestServer_RequestLog(t *testing.T) {
	srv, ts := newTestServer(t, DefaultConfig())

	postRide(t, ts.URL, types.LiftRide{ResortID: "r", DayID: 1, SkierID: 1, Time: 1, LiftID: 1})
	resp, err := http.Get(ts.URL + "/skiers/1/vertical?resort=r")
	require.NoError(t, err)
	resp.Body.Close()

	logs := srv.GetLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, http.MethodPost, logs[0].Method)
	assert.Equal(t, http.StatusOK, logs[0].Status)
	assert.Equal(t, "/skiers/1/vertical", logs[1].Path)

	srv.ClearLogs()
	assert.Empty(t, srv.GetLogs())
}

func TestServer_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	srv := NewServer(cfg, nil)

	require.NoError(t, srv.Start())
	defer srv.Stop()

	assert.NotEqual(t, "http://127.0.0.1:0", srv.GetAddress())

	resp, err := http.Get(srv.GetAddress() + "/skiers/1/vertical?resort=r")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "mock.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("port: 9090\nfailureRate: 0.25\ndelay: 5\n"), 0644))

	cfg, err := LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.InDelta(t, 0.25, cfg.FailureRate, 0.0001)
	assert.Equal(t, 5, cfg.Delay)
	assert.Equal(t, "/skiers/liftrides", cfg.APIPath, "defaults fill unset fields")

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"failureRate": 2}`), 0644))
	_, err = LoadConfig(badPath)
	assert.ErrorContains(t, err, "failureRate")

	_, err = LoadConfig(filepath.Join(dir, "mock.toml"))
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.json")
	cfg := DefaultConfig()
	cfg.FailureRate = 0.1

	require.NoError(t, SaveConfig(cfg, path))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
