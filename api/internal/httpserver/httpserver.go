package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"species-bot/api/internal/handle"
)

func NewRouter(h *handle.Handle) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/v1/species/identify", h.Identify).Methods(http.MethodPost)
	r.HandleFunc("/v1/species/results/{id}", h.Result).Methods(http.MethodGet)
	return r
}

// StartHTTP blocks serving handler on addr.
func StartHTTP(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s", addr)
	return srv.ListenAndServe()
}
