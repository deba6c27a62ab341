package simulation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/elevsim/core/clock"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/random"
	coresim "github.com/kilianp07/elevsim/core/simulation"
)

var t0 = time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC)

func newServer(t *testing.T, opts Options) (*coresim.Engine, http.Handler) {
	t.Helper()
	eng, err := coresim.New(model.DefaultSimulationConfig(),
		coresim.WithClock(clock.NewManual(t0)), coresim.WithRandom(&random.Sequence{}))
	require.NoError(t, err)
	t.Cleanup(eng.Stop)
	opts.Now = func() time.Time { return t0.Add(10 * time.Second) }
	return eng, NewHandler(eng, opts)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	_, h := newServer(t, Options{})
	rr := do(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"1.0.0"}`, rr.Body.String())
}

func TestStateShape(t *testing.T) {
	_, h := newServer(t, Options{})
	rr := do(h, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	for _, k := range []string{"elevators", "floorRequests", "destinationRequests", "config"} {
		assert.Contains(t, raw, k)
	}
	cfg := raw["config"].(map[string]any)
	assert.Equal(t, float64(10), cfg["numberOfFloors"])
	assert.Equal(t, float64(4), cfg["numberOfElevators"])
}

func TestFloorRequest(t *testing.T) {
	eng, h := newServer(t, Options{})

	rr := do(h, http.MethodPost, "/request", `{"floor":3,"direction":"UP"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())
	require.Len(t, eng.Snapshot().FloorCalls, 1)

	checks := []string{
		`{"floor":"3","direction":"UP"}`,
		`{"floor":3,"direction":"SIDEWAYS"}`,
		`{"direction":"UP"}`,
		`not json`,
		`{"floor":2.5,"direction":"DOWN"}`,
	}
	for _, body := range checks {
		rr := do(h, http.MethodPost, "/request", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		var resp errorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid request parameters", resp.Error)
		details := resp.Details.(map[string]any)
		assert.Contains(t, details, "expected")
		assert.Contains(t, details, "received")
	}

	rr = do(h, http.MethodPost, "/request", `{"floor":42,"direction":"DOWN"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid floor")
	assert.Len(t, eng.Snapshot().FloorCalls, 1)
}

func TestDestination(t *testing.T) {
	eng, h := newServer(t, Options{})

	rr := do(h, http.MethodPost, "/destination", `{"elevatorId":1,"floor":7}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, eng.Snapshot().DestinationRequests, 1)

	rr = do(h, http.MethodPost, "/destination", `{"elevatorId":"one","floor":7}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = do(h, http.MethodPost, "/destination", `{"elevatorId":1,"floor":10}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestConfigUpdate(t *testing.T) {
	eng, h := newServer(t, Options{})

	rr := do(h, http.MethodPost, "/config", `{"numberOfFloors":15,"morningPeak":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	cfg := eng.Snapshot().Config
	assert.Equal(t, 15, cfg.FloorCount)
	assert.True(t, cfg.MorningPeak)
	assert.Equal(t, 4, cfg.ElevatorCount)

	rr = do(h, http.MethodPost, "/config", `{"requestFrequency":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0.5, eng.Snapshot().Config.CallArrivalRate)

	rr = do(h, http.MethodPost, "/config", `{"numberOfFloors":"many"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStartStopReset(t *testing.T) {
	eng, h := newServer(t, Options{})

	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/start", "").Code)
	assert.True(t, eng.Running())
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/stop", "").Code)
	assert.False(t, eng.Running())

	require.NoError(t, eng.SubmitFloorCall(2, model.DirectionUp))
	rr := do(h, http.MethodPost, "/reset", `{"config":{"numberOfFloors":6,"numberOfElevators":2}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	st := eng.Snapshot()
	assert.Empty(t, st.FloorCalls)
	assert.Len(t, st.Elevators, 2)
	assert.Equal(t, 6, st.Config.FloorCount)
	assert.Equal(t, 10, st.Config.ElevatorCapacity)

	rr = do(h, http.MethodPost, "/reset", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, model.DefaultSimulationConfig(), eng.Snapshot().Config)

	rr = do(h, http.MethodPost, "/reset", `{"config":{"numberOfElevators":0}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newServer(t, Options{})
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/start", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/state", "").Code)
}

func TestReport(t *testing.T) {
	eng, h := newServer(t, Options{})
	require.NoError(t, eng.SubmitFloorCall(4, model.DirectionDown))

	rr := do(h, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/markdown", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "**Active Requests**: 1")

	rr = do(h, http.MethodGet, "/report?format=json", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	assert.Equal(t, float64(1), m["activeRequests"])
	assert.Equal(t, float64(10), m["avgWaitTime"])

	rr = do(h, http.MethodGet, "/report/chart", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, bytes.Contains(rr.Body.Bytes(), []byte("<html")))
}

func TestAssignmentsRouteRequiresJournal(t *testing.T) {
	_, h := newServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/assignments", "").Code)
}

func TestCORS(t *testing.T) {
	_, h := newServer(t, Options{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/request", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "POST")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
