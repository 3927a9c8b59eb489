package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/robfig/cron/v3"

	"github.com/jmarchant/reveille/internal/audio"
	"github.com/jmarchant/reveille/internal/schedule"
)

// Player is the playback capability the scheduler dispatches to.
type Player interface {
	Play(path string) error
}

// Config holds scheduler settings.
type Config struct {
	// Location is the timezone triggers are evaluated in.
	// Nil means local time.
	Location *time.Location

	// StatePath, when set, is where the run state JSON is written
	// after each dispatch.
	StatePath string
}

// Service owns the trigger list and the cron instance driving it.
// All state is held by the instance; there are no package-level
// registrations.
type Service struct {
	mu sync.Mutex

	log    *slog.Logger
	cfg    Config
	player Player

	parser cron.Parser
	c      *cron.Cron
	sched  *schedule.Schedule

	running bool

	state *stateFile
}

// New creates a scheduler dispatching to player.
func New(cfg Config, player Player, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{
		log:    log,
		cfg:    cfg,
		player: player,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		state:  newStateFile(cfg.StatePath, log),
	}
}

// weekdaySpec returns the cron spec firing at t Monday through Friday.
func weekdaySpec(t schedule.TimeOfDay) string {
	return fmt.Sprintf("%d %d * * 1-5", t.Minute, t.Hour)
}

// weekendSpec returns the cron spec firing at t on Saturday and Sunday.
func weekendSpec(t schedule.TimeOfDay) string {
	return fmt.Sprintf("%d %d * * 0,6", t.Minute, t.Hour)
}

// Apply replaces the trigger set with the given schedule. If the
// scheduler is running, the cron instance is restarted with the new
// triggers; weekday entries only ever fire Monday-Friday and weekend
// entries only Saturday-Sunday.
func (s *Service) Apply(sched *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.sched
	s.sched = sched
	if !s.running {
		return nil
	}
	if err := s.restartLocked(); err != nil {
		s.sched = prev
		return err
	}
	return nil
}

// Start registers the current schedule and starts the cron loop.
// It returns immediately; triggers fire until ctx is cancelled or
// Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true

	if err := s.restartLocked(); err != nil {
		s.running = false
		return err
	}

	s.state.markStarted(time.Now().In(s.cfg.Location))

	context.AfterFunc(ctx, s.Stop)

	count := 0
	if s.sched != nil {
		count = s.sched.Len()
	}
	s.log.Info("scheduler started", "entries", count, "tz", s.cfg.Location.String())
	return nil
}

// Stop halts the cron loop, waiting for a running dispatch to return.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.c != nil {
		<-s.c.Stop().Done()
		s.c = nil
	}
	s.log.Info("scheduler stopped")
}

// restartLocked builds a fresh cron instance from s.sched and swaps it
// in. The previous instance keeps running until the replacement has
// registered cleanly, so a bad trigger set cannot leave the service
// without any armed triggers. Callers must hold s.mu.
func (s *Service) restartLocked() error {
	c := cron.New(cron.WithParser(s.parser), cron.WithLocation(s.cfg.Location))

	if s.sched != nil {
		if err := s.register(c, s.sched.Weekdays, weekdaySpec); err != nil {
			return err
		}
		if err := s.register(c, s.sched.Weekends, weekendSpec); err != nil {
			return err
		}
	}

	if s.c != nil {
		<-s.c.Stop().Done()
	}
	s.c = c
	c.Start()
	return nil
}

func (s *Service) register(c *cron.Cron, entries []schedule.Entry, spec func(schedule.TimeOfDay) string) error {
	for _, e := range entries {
		e := e
		if _, err := c.AddFunc(spec(e.At), func() { s.Fire(e) }); err != nil {
			return fmt.Errorf("failed to register call %q: %w", e.Name, err)
		}
		s.log.Debug("registered call", "name", e.Name, "at", e.At.String(), "spec", spec(e.At))
	}
	return nil
}

// Fire plays the entry's audio file now and records the outcome.
// A playback failure is logged and recorded, never fatal: the
// remaining triggers stay armed.
func (s *Service) Fire(e schedule.Entry) FireRecord {
	rec := FireRecord{
		ID:        ulid.Make().String(),
		Name:      e.Name,
		AudioPath: e.AudioPath,
		At:        time.Now().In(s.cfg.Location),
	}

	s.log.Info("playing call", "name", e.Name, "path", e.AudioPath, "id", rec.ID)

	// Existence is checked lazily, at dispatch time, against the same
	// expanded path the player opens.
	path := audio.ExpandPath(e.AudioPath)
	if _, err := os.Stat(path); err != nil {
		rec.Error = fmt.Sprintf("audio file unavailable: %v", err)
	} else if err := s.player.Play(path); err != nil {
		rec.Error = err.Error()
	}

	if rec.Error != "" {
		s.log.Error("call playback failed", "name", e.Name, "path", e.AudioPath, "error", rec.Error)
	}

	s.state.record(rec)
	return rec
}

// Schedule returns the currently applied schedule, which may be nil.
func (s *Service) Schedule() *schedule.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched
}

// Location returns the timezone triggers are evaluated in.
func (s *Service) Location() *time.Location {
	return s.cfg.Location
}

// Now returns the current time in the scheduler's timezone.
func (s *Service) Now() time.Time {
	return time.Now().In(s.cfg.Location)
}

// State returns a snapshot of the run state.
func (s *Service) State() RunState {
	return s.state.snapshot()
}
