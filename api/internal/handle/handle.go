package handle

import (
	"encoding/json"
	"net/http"
	"time"

	"species-bot/api/internal/handoff"
	"species-bot/api/internal/species/state"
)

type Handle struct {
	runner     state.Runner
	minDisplay time.Duration
	maxUpload  int64
	results    *handoff.Store
}

func New(runner state.Runner, results *handoff.Store, minDisplay time.Duration, maxUpload int64) *Handle {
	return &Handle{
		runner:     runner,
		minDisplay: minDisplay,
		maxUpload:  maxUpload,
		results:    results,
	}
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
