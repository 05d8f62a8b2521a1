package api

import (
	"encoding/json"
	"net/http"

	"github.com/tillhouse/conference-meet-scorer-sub003/internal/domain/model"
)

// MeetsHandler serves meet snapshots and their computed results.
type MeetsHandler struct {
	deps Dependencies
}

// NewMeetsHandler creates a new meets handler.
func NewMeetsHandler(deps Dependencies) *MeetsHandler {
	return &MeetsHandler{deps: deps}
}

// HandlePut handles PUT /meets/{meetID}.
func (h *MeetsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_meet"
	meetID := r.PathValue("meetID")

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(meetID); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	snap := *req.Snapshot
	snap.Meet.ID = meetID

	res, err := h.deps.PutSnapshot(r.Context(), req.SubmissionID, snap)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusAccepted
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, ackResponse{Status: res.Status(), PutResult: res})
}

// HandleDelete handles DELETE /meets/{meetID}.
func (h *MeetsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteMeet(r.Context(), r.PathValue("meetID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /meets.
func (h *MeetsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListMeets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleStandings handles GET /meets/{meetID}/standings?mode=.
func (h *MeetsHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	mode, ok := viewMode(w, r)
	if !ok {
		return
	}
	res, err := h.deps.Standings(r.Context(), r.PathValue("meetID"), mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleEvent handles GET /meets/{meetID}/events/{eventID}?mode=.
func (h *MeetsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	mode, ok := viewMode(w, r)
	if !ok {
		return
	}
	ev, err := h.deps.EventResults(r.Context(), r.PathValue("meetID"), r.PathValue("eventID"), mode)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleAvailability handles GET /meets/{meetID}/availability.
func (h *MeetsHandler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	av, err := h.deps.Availability(r.Context(), r.PathValue("meetID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// viewMode reads the optional mode query parameter. An absent mode is
// returned empty so the service picks the meet's default.
func viewMode(w http.ResponseWriter, r *http.Request) (model.ViewMode, bool) {
	raw := r.URL.Query().Get("mode")
	if raw == "" {
		return "", true
	}
	mode, err := model.ParseViewMode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind("api.view_mode", ErrBadRequest, err))
		return "", false
	}
	return mode, true
}
