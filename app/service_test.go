package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/elevsim/config"
	"github.com/kilianp07/elevsim/core/factory"
	"github.com/kilianp07/elevsim/core/journal"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.Address = "off"
	cfg.HTTP.AuthToken = "tok"
	cfg.Seed = 1
	cfg.Logging.Path = filepath.Join(t.TempDir(), "assignments.jsonl")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceRecordsAssignments(t *testing.T) {
	svc, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// Wait for subscribers before generating events.
	require.Eventually(t, func() bool { return svc.bus.Subscribers() >= 3 }, time.Second, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/request", strings.NewReader(`{"floor":4,"direction":"DOWN"}`))
	rr := httptest.NewRecorder()
	svc.Handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	svc.Engine.Tick()

	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/assignments?elevator_id=0", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rr := httptest.NewRecorder()
		svc.Handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			return false
		}
		var recs []journal.LogRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
			return false
		}
		return len(recs) == 1 && recs[0].Floor == 4 && recs[0].Rule == "nearest"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServiceAutoStart(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoStart = true
	cfg.Logging.Backend = "none"
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	require.Eventually(t, svc.Engine.Running, time.Second, 5*time.Millisecond)
	assert.Nil(t, svc.store)
}

func TestNewRejectsUnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestNewRejectsInvalidSimulation(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.FloorCount = 1
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestServiceWritesLogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Backend = "none"
	cfg.Logging.File = filepath.Join(t.TempDir(), "elevsim.log")
	require.NoError(t, cfg.Validate())

	svc, err := New(cfg)
	require.NoError(t, err)
	svc.log.Warnf("elevator %d out of service", 1)
	require.NoError(t, svc.Close())

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "elevator 1 out of service")
}
