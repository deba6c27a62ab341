package simulation

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kilianp07/elevsim/core/journal"
)

// NewAssignmentsHandler serves journal records as a JSON array. Filters come
// from the start, end, elevator_id, rule and limit query parameters. A
// non-empty token requires "Authorization: Bearer <token>".
func NewAssignmentsHandler(store journal.Store, token string) http.Handler {
	return journalRoute(store, token, func(w http.ResponseWriter, recs []journal.LogRecord) {
		if recs == nil {
			recs = []journal.LogRecord{}
		}
		writeJSON(w, http.StatusOK, recs)
	})
}

// NewAssignmentSummaryHandler serves the number of matching records per rule.
func NewAssignmentSummaryHandler(store journal.Store, token string) http.Handler {
	return journalRoute(store, token, func(w http.ResponseWriter, recs []journal.LogRecord) {
		writeJSON(w, http.StatusOK, map[string]any{
			"total":  len(recs),
			"byRule": journal.CountByRule(recs),
		})
	})
}

func journalRoute(store journal.Store, token string, render func(http.ResponseWriter, []journal.LogRecord)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r, token) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		q, err := parseLogQuery(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		recs, err := store.Query(r.Context(), q)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
			return
		}
		render(w, recs)
	})
}

func authorized(r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	got := []byte(r.Header.Get("Authorization"))
	return subtle.ConstantTimeCompare(got, []byte("Bearer "+token)) == 1
}

func parseLogQuery(v url.Values) (journal.LogQuery, error) {
	var (
		q   journal.LogQuery
		err error
	)
	if q.Start, err = parseTime(v, "start"); err != nil {
		return q, err
	}
	if q.End, err = parseTime(v, "end"); err != nil {
		return q, err
	}
	if s := v.Get("elevator_id"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid elevator_id %q", s)
		}
		q.ElevatorID = &id
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
		q.Limit = n
	}
	q.Rule = v.Get("rule")
	return q, nil
}

func parseTime(v url.Values, key string) (time.Time, error) {
	s := v.Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q", key, s)
	}
	return t, nil
}
