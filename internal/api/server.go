// Package api exposes the HTTP control interface: run status, today's
// schedule, and remote triggering of a named call.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmarchant/reveille/internal/audio"
	"github.com/jmarchant/reveille/internal/schedule"
	"github.com/jmarchant/reveille/internal/scheduler"
)

// TokenHeader is the header clients authenticate with.
const TokenHeader = "X-API-Token"

// Scheduler is the part of the scheduler service the API needs.
type Scheduler interface {
	State() scheduler.RunState
	Schedule() *schedule.Schedule
	Now() time.Time
	Fire(e schedule.Entry) scheduler.FireRecord
}

// Server serves the control API.
type Server struct {
	token string
	sched Scheduler
	log   *slog.Logger
}

// NewServer creates a control API server. token must be non-empty;
// the API is simply not started when no token is configured.
func NewServer(token string, sched Scheduler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{token: token, sched: sched, log: log}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requireToken)

	r.Get("/status", s.handleStatus)
	r.Get("/schedule", s.handleSchedule)
	r.Post("/play", s.handlePlay)

	return r
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("control api listening", "addr", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requireToken rejects requests that do not carry the configured token.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(TokenHeader)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			writeError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.State())
}

// scheduleEntry is the wire form of one call in today's schedule.
type scheduleEntry struct {
	Name      string `json:"name"`
	Time      string `json:"time"`
	AudioFile string `json:"audio_file"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	now := s.sched.Now()

	var entries []scheduleEntry
	sched := s.sched.Schedule()
	if sched != nil {
		for _, e := range sched.ForDay(now.Weekday()) {
			entries = append(entries, scheduleEntry{
				Name:      e.Name,
				Time:      e.At.String(),
				AudioFile: e.AudioPath,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"day":     now.Weekday().String(),
		"weekend": schedule.IsWeekend(now.Weekday()),
		"entries": entries,
	})
}

// playRequest asks for a named call from today's schedule.
type playRequest struct {
	Call string `json:"call"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Call == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty \"call\"")
		return
	}

	now := s.sched.Now()
	sched := s.sched.Schedule()
	if sched == nil {
		writeError(w, http.StatusNotFound, "no schedule loaded")
		return
	}

	entry, ok := sched.Lookup(req.Call, now.Weekday())
	if !ok {
		writeError(w, http.StatusNotFound, "call is not in today's schedule")
		return
	}
	if _, err := os.Stat(audio.ExpandPath(entry.AudioPath)); err != nil {
		writeError(w, http.StatusNotFound, "audio file not found")
		return
	}

	rec := s.sched.Fire(entry)
	if rec.Error != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "failed",
			"call":   rec.Name,
			"id":     rec.ID,
			"error":  rec.Error,
		})
		return
	}

	s.log.Info("call triggered via api", "call", rec.Name, "id", rec.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "played",
		"call":   rec.Name,
		"id":     rec.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
