package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/examscores/scorebot/core/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(p)
	s.bytes += n
	return n, err
}

// requestID keeps the caller's id or assigns a new one and exposes it to logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := logger.SanitizeLimit(r.Header.Get(RequestIDHeader), 128)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)
		ctx := logger.WithRID(r.Context(), rid)
		ctx = logger.WithLogger(ctx, logger.HTTP)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog writes one summary line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		code := rec.status
		if code == 0 {
			code = http.StatusOK
		}
		route := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			route, _ = cur.GetPathTemplate()
		}
		status, level := "ok", slog.LevelInfo
		switch {
		case code >= 500:
			status, level = "fail", slog.LevelError
		case code >= 400:
			status = "invalid"
		}
		logger.LogEvent(r.Context(), logger.HTTP, level, "http.request",
			slog.String("status", status),
			slog.String("method", r.Method),
			slog.String("path", logger.SanitizeLimit(r.URL.Path, 256)),
			slog.String("route", route),
			slog.Int("http_code", code),
			slog.Int("bytes", rec.bytes),
			slog.Duration("duration", logger.Took(start)),
		)
	})
}

// recoverPanic turns handler panics into 500 answers.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.LogEvent(r.Context(), logger.HTTP, slog.LevelError, "http.panic",
					slog.String("status", "fail"),
					slog.Any("err", v),
					slog.String("stack", string(debug.Stack())),
				)
				writeJSON(w, http.StatusInternalServerError, detail{Detail: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
