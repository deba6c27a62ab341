package simulation

import (
	"net/http"

	"github.com/kilianp07/elevsim/core/report"
	"github.com/kilianp07/elevsim/pkg/export"
)

// report serves the markdown report, or the raw figures with ?format=json.
func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	st := h.eng.Snapshot()
	now := h.opts.Now()
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, report.Compute(st, now))
		return
	}
	w.Header().Set("Content-Type", "text/markdown")
	_, _ = w.Write([]byte(report.Markdown(st, now)))
}

func (h *handler) chart(w http.ResponseWriter, _ *http.Request) {
	html, err := export.OccupancyChartHTML(h.eng.Snapshot())
	if err != nil {
		h.log.Errorf("render chart: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to generate report", Details: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}
