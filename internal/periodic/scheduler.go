// Package periodic runs tasks once a day at a wall-clock time.
package periodic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Kind names a daily schedule. Scheduling a kind again replaces the previous schedule.
type Kind string

const (
	KindNotification Kind = "daily_notification"
	KindAutoDelete   Kind = "auto_delete"
)

// Task is run when a schedule fires.
type Task func(ctx context.Context)

type entry struct {
	hour, minute int
	timer        *time.Timer
	// generation guards against a fired timer rearming after it was replaced.
	generation uint64
}

// Scheduler keeps at most one daily schedule per kind.
type Scheduler struct {
	ctx      context.Context
	now      func() time.Time
	location *time.Location

	mu         sync.Mutex
	entries    map[Kind]*entry
	generation uint64
	wg         sync.WaitGroup
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLocation sets the zone hour and minute are interpreted in.
func WithLocation(location *time.Location) Option {
	return func(s *Scheduler) {
		if location != nil {
			s.location = location
		}
	}
}

// NewScheduler returns a Scheduler whose tasks run with ctx.
func NewScheduler(ctx context.Context, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:      ctx,
		now:      time.Now,
		location: time.Local,
		entries:  make(map[Kind]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextRun returns the next time hour:minute occurs: today if still ahead of now, else tomorrow.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func validateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d must be between 0 and 23", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute %d must be between 0 and 59", minute)
	}
	return nil
}

// ScheduleDaily runs task every day at hour:minute, replacing any schedule of the same kind.
func (s *Scheduler) ScheduleDaily(kind Kind, hour, minute int, task Task) error {
	if err := validateClock(hour, minute); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(kind)

	s.generation++
	e := &entry{hour: hour, minute: minute, generation: s.generation}
	s.entries[kind] = e
	s.armLocked(kind, e, task)

	slog.Default().Info("scheduled daily task",
		"kind", kind,
		"hour", hour,
		"minute", minute,
	)
	return nil
}

func (s *Scheduler) armLocked(kind Kind, e *entry, task Task) {
	now := s.now().In(s.location)
	delay := NextRun(now, e.hour, e.minute).Sub(now)
	e.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current, ok := s.entries[kind]
		if !ok || current.generation != e.generation || s.ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		s.wg.Add(1)
		s.mu.Unlock()

		slog.Default().Debug("running daily task", "kind", kind)
		task(s.ctx)
		s.wg.Done()

		s.mu.Lock()
		defer s.mu.Unlock()
		if current, ok := s.entries[kind]; ok && current.generation == e.generation && s.ctx.Err() == nil {
			s.armLocked(kind, e, task)
		}
	})
}

// CancelDaily removes the schedule of kind. It is a no-op when nothing is scheduled.
func (s *Scheduler) CancelDaily(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelLocked(kind) {
		slog.Default().Info("cancelled daily task", "kind", kind)
	}
}

func (s *Scheduler) cancelLocked(kind Kind) bool {
	e, ok := s.entries[kind]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, kind)
	return true
}

// Scheduled reports the time kind is scheduled at.
func (s *Scheduler) Scheduled(kind Kind) (hour, minute int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[kind]
	if !ok {
		return 0, 0, false
	}
	return e.hour, e.minute, true
}

// Stop cancels every schedule and waits for running tasks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for kind := range s.entries {
		s.cancelLocked(kind)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
