package audio

import (
	"context"
	"log/slog"
)

// Manager bundles the player with the file watcher and applies the
// configured volume.
type Manager struct {
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
}

// NewManager creates a new audio manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	player := NewPlayer(logger)
	return &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player, logger),
	}
}

// SetVolumePercent sets the playback volume from a 0-100 scale.
func (m *Manager) SetVolumePercent(volume int) {
	m.player.SetVolume(float64(volume) / 100.0)
}

// Preload decodes the given files into the cache and watches them for
// replacement on disk. Files that cannot be loaded are logged and
// skipped; they may appear before their call fires.
func (m *Manager) Preload(paths []string) {
	for _, path := range paths {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload call", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}
	m.logger.Info("audio manager preloaded", "files", len(paths))
}

// Reset drops the cache and watch list, for schedule reloads.
func (m *Manager) Reset() {
	m.player.ClearCache()
	m.watcher.Clear()
}

// Start starts the file watcher.
func (m *Manager) Start(ctx context.Context) error {
	return m.watcher.Start(ctx)
}

// Stop shuts down the watcher and the player.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// Play plays a file without waiting for completion.
func (m *Manager) Play(path string) error {
	return m.player.Play(path)
}

// PlaySync plays a file and blocks until it finishes.
func (m *Manager) PlaySync(path string) error {
	return m.player.PlaySync(path)
}
