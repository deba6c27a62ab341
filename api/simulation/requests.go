package simulation

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/elevsim/core/model"
)

// received echoes the decoded payload in 400 responses, or the raw text
// when it is not JSON.
func received(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

func invalidParameters(w http.ResponseWriter, expected map[string]any, body []byte) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error: "Invalid request parameters",
		Details: map[string]any{
			"expected": expected,
			"received": received(body),
		},
	})
}

func (h *handler) floorRequest(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var req struct {
		Floor     *int            `json:"floor"`
		Direction model.Direction `json:"direction"`
	}
	err = json.Unmarshal(body, &req)
	if err != nil || req.Floor == nil || (req.Direction != model.DirectionUp && req.Direction != model.DirectionDown) {
		invalidParameters(w, map[string]any{"floor": "number", "direction": []string{"UP", "DOWN"}}, body)
		return
	}
	if err := h.eng.SubmitFloorCall(*req.Floor, req.Direction); err != nil {
		writeEngineError(w, err)
		return
	}
	writeSuccess(w)
}

func (h *handler) destination(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var req struct {
		ElevatorID *int `json:"elevatorId"`
		Floor      *int `json:"floor"`
	}
	err = json.Unmarshal(body, &req)
	if err != nil || req.ElevatorID == nil || req.Floor == nil {
		invalidParameters(w, map[string]any{"elevatorId": "number", "floor": "number"}, body)
		return
	}
	if err := h.eng.SubmitDestination(*req.ElevatorID, *req.Floor); err != nil {
		writeEngineError(w, err)
		return
	}
	writeSuccess(w)
}
