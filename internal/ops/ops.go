// Package ops is the bot's operational HTTP surface: liveness, readiness and
// Prometheus metrics. It serves no ledger functionality.
package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"labalog.org/internal/obs"
)

// ReadyProbe reports whether the backing store is reachable. With no DB
// configured (csv backend) readiness is unconditional.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

type Server struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
}

func New(rp ReadyProbe, version string) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
	}

	s.mux.HandleFunc("/healthz", s.Healthz)
	s.mux.HandleFunc("/readyz", s.Ready)
	s.mux.Handle("/metrics", obs.Handler())
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return Logging(s.mux)
}

// --- Handlers ---

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "labalog-bot",
		"version": s.version,
	})
}

func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if err := s.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// --- middleware ---

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging: method, path, status, duration
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: 200}
		start := time.Now()
		next.ServeHTTP(sw, r)
		obs.Logger().Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.code, time.Since(start))
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
