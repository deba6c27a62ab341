// Package simulation exposes the simulation engine over HTTP.
package simulation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/elevsim/core/journal"
	"github.com/kilianp07/elevsim/core/model"
	"github.com/kilianp07/elevsim/core/logger"
)

// Version is reported by GET /health.
const Version = "1.0.0"

// maxBody bounds request payloads.
const maxBody = 1 << 20

// Engine is the simulation surface driven by the API.
type Engine interface {
	Start()
	Stop()
	Running() bool
	Reset(cfg model.SimulationConfig) error
	SetConfig(p model.ConfigPatch) error
	SubmitFloorCall(floor int, dir model.Direction) error
	SubmitDestination(elevatorID, floor int) error
	Snapshot() model.SimulationState
}

// Options tune the handler. The zero value serves the control routes with
// default configuration and no journal.
type Options struct {
	// Defaults is the base configuration for POST /reset.
	Defaults model.SimulationConfig
	// Journal enables the /api/assignments routes when set.
	Journal journal.Store
	// AuthToken protects /api/assignments when non-empty.
	AuthToken string
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	Logger         logger.Logger
	Now            func() time.Time
}

type handler struct {
	eng  Engine
	opts Options
	log  logger.Logger
}

// NewHandler returns the HTTP API for eng.
func NewHandler(eng Engine, opts Options) http.Handler {
	if opts.Defaults == (model.SimulationConfig{}) {
		opts.Defaults = model.DefaultSimulationConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &handler{eng: eng, opts: opts, log: logger.OrNop(opts.Logger)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /state", h.state)
	mux.HandleFunc("POST /config", h.config)
	mux.HandleFunc("POST /start", h.start)
	mux.HandleFunc("POST /stop", h.stop)
	mux.HandleFunc("POST /reset", h.reset)
	mux.HandleFunc("POST /request", h.floorRequest)
	mux.HandleFunc("POST /destination", h.destination)
	mux.HandleFunc("GET /report", h.report)
	mux.HandleFunc("GET /report/chart", h.chart)
	if opts.Journal != nil {
		mux.Handle("GET /api/assignments", NewAssignmentsHandler(opts.Journal, opts.AuthToken))
		mux.Handle("GET /api/assignments/summary", NewAssignmentSummaryHandler(opts.Journal, opts.AuthToken))
	}
	return withCORS(mux, opts.AllowedOrigins)
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeEngineError maps the model sentinels to 400 and anything else to 500.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidConfig),
		errors.Is(err, model.ErrInvalidFloor),
		errors.Is(err, model.ErrInvalidDirection):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

// readBody returns the request payload.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

func (h *handler) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Snapshot())
}

func (h *handler) config(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var p model.ConfigPatch
	if len(body) > 0 {
		if err := json.Unmarshal(body, &p); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid config", Details: err.Error()})
			return
		}
	}
	if err := h.eng.SetConfig(p); err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Infof("configuration updated")
	writeSuccess(w)
}

func (h *handler) start(w http.ResponseWriter, _ *http.Request) {
	h.eng.Start()
	writeSuccess(w)
}

func (h *handler) stop(w http.ResponseWriter, _ *http.Request) {
	h.eng.Stop()
	writeSuccess(w)
}

func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var req struct {
		Config *model.ConfigPatch `json:"config"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid config", Details: err.Error()})
			return
		}
	}
	cfg := h.opts.Defaults
	if req.Config != nil {
		cfg = cfg.Apply(*req.Config)
	}
	if err := h.eng.Reset(cfg); err != nil {
		writeEngineError(w, err)
		return
	}
	h.log.Infof("simulation reset")
	writeSuccess(w)
}
