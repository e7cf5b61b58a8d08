// Package scheduler runs the periodic background jobs of the server.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/decred/slog"
	"github.com/robfig/cron"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) {
	log = logger
}

// WatchdogSchedule is how often forgotten timers are looked for.
const WatchdogSchedule = "@every 5m"

// TimerStopper stops timers that have been running for too long.
type TimerStopper interface {
	StopForgotten(ctx context.Context, maxRunning time.Duration) ([]models.TimeEntry, error)
}

type Config struct {
	Timers TimerStopper
	// MaxRunning is the longest a timer may run before the watchdog stops
	// it. Zero disables the watchdog.
	MaxRunning time.Duration
	// JobTimeout bounds a single run of a job.
	JobTimeout time.Duration
	// OnStopped is called with the entries the watchdog stopped.
	OnStopped func([]models.TimeEntry)
}

type Scheduler struct {
	cfg  Config
	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

func New(cfg Config) *Scheduler {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = time.Minute
	}
	return &Scheduler{
		cfg:  cfg,
		cron: cron.New(),
	}
}

// Start registers the enabled jobs and starts the cron runner. It is a no-op
// when no job is enabled.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	jobs := 0
	if s.cfg.Timers != nil && s.cfg.MaxRunning > 0 {
		if err := s.cron.AddFunc(WatchdogSchedule, s.StopForgottenTimers); err != nil {
			return err
		}
		jobs++
		log.Infof("Timer watchdog enabled: stopping timers running longer than %v", s.cfg.MaxRunning)
	}

	if jobs == 0 {
		log.Debugf("No scheduled jobs enabled")
		return nil
	}

	s.cron.Start()
	s.running = true
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	log.Infof("Scheduler stopped")
}

// StopForgottenTimers is the watchdog job body.
func (s *Scheduler) StopForgottenTimers() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	stopped, err := s.cfg.Timers.StopForgotten(ctx, s.cfg.MaxRunning)
	if err != nil {
		log.Errorf("Timer watchdog: %v", err)
	}
	if len(stopped) == 0 {
		return
	}

	log.Infof("Timer watchdog stopped %d timer(s)", len(stopped))
	if s.cfg.OnStopped != nil {
		s.cfg.OnStopped(stopped)
	}
}
