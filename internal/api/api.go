// internal/api/api.go

// Package api implements the HTTP boundary of netclassd.
//
// Routes:
//
//	GET /api/v1/status   current network class
//	GET /api/v1/events   WebSocket live stream of class changes
//	GET /api/v1/watcher  watcher state and listener count
//	GET /api/v1/history  recorded transitions (paginated)
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/history"
	"github.com/tamzrod/netclass/internal/netclass"
	"github.com/tamzrod/netclass/internal/watcher"
)

// Watcher is the subset of *watcher.Watcher the API needs.
type Watcher interface {
	Status() netclass.Class
	Subscribe() (*watcher.Subscription, error)
	Unsubscribe(s *watcher.Subscription) error
	State() watcher.State
	Len() int
}

// History is the read side of the transition store.
type History interface {
	List(ctx context.Context, limit int) ([]history.Transition, error)
}

// Server holds handler dependencies.
type Server struct {
	w    Watcher
	hist History // nil when history is disabled
	log  *zap.Logger
	now  func() time.Time
}

// NewRouter wires all /api/v1/* routes and returns a http.Handler.
// hist may be nil, in which case /api/v1/history answers 404.
func NewRouter(w Watcher, hist History, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{w: w, hist: hist, log: log, now: time.Now}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.status)
	mux.HandleFunc("GET /api/v1/watcher", s.watcherState)
	mux.HandleFunc("GET /api/v1/history", s.listHistory)

	// WebSocket event stream
	mux.HandleFunc("GET /api/v1/events", s.eventStream)

	return withLogging(log, mux)
}

// StatusEvent is the JSON shape of one class report.
type StatusEvent struct {
	Status netclass.Class `json:"status"`
	Code   uint16         `json:"code"`
	Time   string         `json:"time"`
}

func (s *Server) event(c netclass.Class) StatusEvent {
	return StatusEvent{
		Status: c,
		Code:   c.Code(),
		Time:   s.now().UTC().Format(time.RFC3339),
	}
}

// ── Status ────────────────────────────────────────────────────────────────

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.event(s.w.Status()))
}

func (s *Server) watcherState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":       s.w.State().String(),
		"subscribers": s.w.Len(),
	})
}

// ── History ───────────────────────────────────────────────────────────────

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	limit, err := queryInt(r, "limit", 50, 1, 500)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ts, err := s.hist.List(r.Context(), limit)
	if err != nil {
		s.log.Error("api: list history", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transitions": ts,
		"count":       len(ts),
	})
}

// ── Middleware ────────────────────────────────────────────────────────────

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.Debug("api",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.code),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	code int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.code = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("api: response writer does not support hijacking")
	}
	rw.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

// ── helpers ───────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func queryInt(r *http.Request, key string, def, min, max int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("%s must be %d-%d", key, min, max)
	}
	return n, nil
}
