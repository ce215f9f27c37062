package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantprep/examgate/internal/session"
)

// ReaperWorker sweeps the session registry and tears down sessions
// whose owners never came back: terminal (submitted) entries past the
// grace period, and attempts whose clock ran out without the timer
// completing teardown. Every removal stops the session timer first, since
// a timer still ticking for a dead session is a leak.
type ReaperWorker struct {
	manager  *session.Manager
	interval time.Duration
	grace    time.Duration
	log      zerolog.Logger
}

// NewReaperWorker creates a new ReaperWorker.
func NewReaperWorker(manager *session.Manager, interval, grace time.Duration, log zerolog.Logger) *ReaperWorker {
	return &ReaperWorker{
		manager:  manager,
		interval: interval,
		grace:    grace,
		log:      log.With().Str("component", "reaper_worker").Logger(),
	}
}

// Start begins the sweep loop. Call in a goroutine; cancel ctx to stop.
func (w *ReaperWorker) Start(ctx context.Context) {
	w.log.Info().
		Dur("interval", w.interval).
		Dur("grace", w.grace).
		Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ReaperWorker) sweep() {
	reaped := 0

	w.manager.Range(func(s *session.Session) {
		if !w.stale(s) {
			return
		}

		s.StopTimer()
		w.manager.Remove(s.ID())
		reaped++

		w.log.Info().
			Str("session_id", s.ID().String()).
			Bool("submitted", s.Submitted()).
			Msg("Session reaped")
	})

	if reaped > 0 {
		w.log.Info().Int("count", reaped).Msg("Sweep complete")
	}
}

// stale reports whether a session has outlived its useful life: it is
// terminal, or its entire allotment plus grace has elapsed since start.
func (w *ReaperWorker) stale(s *session.Session) bool {
	if s.Submitted() {
		return true
	}

	deadline := s.CreatedAt().
		Add(time.Duration(s.AllottedSeconds()) * time.Second).
		Add(w.grace)
	return time.Now().After(deadline)
}
