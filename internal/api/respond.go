package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/internal/domain"
)

type detail struct {
	Detail any `json:"detail"`
}

type fieldDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.HTTP.Warn("response encode failed",
			slog.String("event", "http.encode"),
			slog.String("err", err.Error()),
		)
	}
}

func writeValidation(w http.ResponseWriter, verr *domain.ValidationError) {
	fields := make([]fieldDetail, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, fieldDetail{Loc: f.Loc, Msg: f.Msg, Type: f.Type})
	}
	writeJSON(w, http.StatusUnprocessableEntity, detail{Detail: fields})
}

// writeError maps service errors to status codes. Unknown errors never leak to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr)
	case errors.Is(err, domain.ErrStudentNotFound):
		writeJSON(w, http.StatusNotFound, detail{Detail: "Student not found"})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, detail{Detail: "Not found"})
	default:
		logger.LogEvent(r.Context(), logger.HTTP, slog.LevelError, "http.error",
			slog.String("status", "fail"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, detail{Detail: "Internal server error"})
	}
}
