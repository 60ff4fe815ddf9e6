package handle

import (
	"net/http"

	"github.com/gorilla/mux"

	"species-bot/api/internal/species/state"
	"species-bot/api/internal/species/view"
)

// Result serves the handoff entry created by Identify. Entries are in-memory only.
func (h *Handle) Result(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	e, ok := h.results.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, IdentifyResponse{
			State: state.Idle,
			View:  view.ToViewModel(nil),
		})
		return
	}
	writeJSON(w, http.StatusOK, IdentifyResponse{
		ID:     e.ID,
		State:  state.Success,
		View:   view.ToViewModel(e.Result),
		Result: e.Result,
		Image:  e.ImageURL,
	})
}
