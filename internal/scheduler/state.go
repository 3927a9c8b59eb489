package scheduler

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FireRecord describes one dispatched call.
type FireRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AudioPath string    `json:"audio_path"`
	At        time.Time `json:"at"`
	Error     string    `json:"error,omitempty"`
}

// RunState is the scheduler's observable state, served by the control
// API and written to the state file after each dispatch.
type RunState struct {
	Started  time.Time   `json:"started"`
	Fires    int         `json:"fires"`
	Failures int         `json:"failures"`
	LastFire *FireRecord `json:"last_fire,omitempty"`
}

// stateFile tracks the run state and mirrors it to disk when a path
// is configured. Writes are best effort: losing a state update never
// blocks dispatch.
type stateFile struct {
	mu    sync.Mutex
	log   *slog.Logger
	path  string
	state RunState
}

func newStateFile(path string, log *slog.Logger) *stateFile {
	if log == nil {
		log = slog.Default()
	}
	return &stateFile{path: path, log: log}
}

func (f *stateFile) markStarted(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Started = at
	f.writeLocked()
}

func (f *stateFile) record(rec FireRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state.Fires++
	if rec.Error != "" {
		f.state.Failures++
	}
	f.state.LastFire = &rec
	f.writeLocked()
}

func (f *stateFile) snapshot() RunState {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.state
	if f.state.LastFire != nil {
		last := *f.state.LastFire
		out.LastFire = &last
	}
	return out
}

// writeLocked persists the state JSON. Callers must hold f.mu.
func (f *stateFile) writeLocked() {
	if f.path == "" {
		return
	}

	data, err := json.MarshalIndent(f.state, "", "  ")
	if err != nil {
		f.log.Warn("failed to marshal run state", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		f.log.Warn("failed to create state directory", "path", f.path, "error", err)
		return
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		f.log.Warn("failed to write run state", "path", f.path, "error", err)
	}
}
