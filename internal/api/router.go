// Package api serves the students and scores HTTP endpoints.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Deps are the services behind the router.
type Deps struct {
	Students StudentService
	Scores   ScoreService
	Health   Pinger
}

// NewRouter registers every endpoint both with and without the trailing slash.
func NewRouter(d Deps) http.Handler {
	h := &handlers{students: d.Students, scores: d.Scores, health: d.Health}

	r := mux.NewRouter()
	r.Use(requestID, accessLog, recoverPanic)

	handle := func(path string, fn http.HandlerFunc, method string) {
		r.HandleFunc(path, fn).Methods(method)
		r.HandleFunc(path+"/", fn).Methods(method)
	}
	handle("/students", h.createStudent, http.MethodPost)
	handle("/students/{id}", h.getStudent, http.MethodGet)
	handle("/students/{id}/scores", h.upsertScore, http.MethodPost)
	handle("/students/{id}/scores", h.listScores, http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	r.NotFoundHandler = requestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, detail{Detail: "Not Found"})
	}))
	r.MethodNotAllowedHandler = requestID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, detail{Detail: "Method Not Allowed"})
	}))
	return r
}
