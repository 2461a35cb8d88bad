// Package coalesce runs keyed writes after a quiet period, keeping only the
// most recent write per key.
package coalesce

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a pending task runs.
const DefaultDelay = 500 * time.Millisecond

// DefaultTaskTimeout bounds a single task run.
const DefaultTaskTimeout = 10 * time.Second

// ErrStopped is returned by Flush after Stop.
var ErrStopped = errors.New("coalesce: scheduler stopped")

// Task is a unit of deferred work.
type Task func(ctx context.Context) error

// Timer is the subset of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it via StdAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// StdAfterFunc wraps time.AfterFunc.
func StdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	task  Task
	timer Timer
	seq   uint64
}

// Scheduler holds at most one pending task per key.
// Scheduling a key that is already pending replaces the task and restarts the delay.
type Scheduler struct {
	mu        sync.Mutex
	delay     time.Duration
	timeout   time.Duration
	afterFunc AfterFunc
	pending   map[string]*entry
	seq       uint64
	stopped   bool
	running   sync.WaitGroup
	observe   Observer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithAfterFunc replaces the timer factory (tests fire timers by hand).
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = f }
}

// Observer is told how long each task run took and whether it failed.
type Observer func(key string, took time.Duration, err error)

// WithObserver registers an observer called after every task run.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observe = o }
}

// WithTaskTimeout overrides DefaultTaskTimeout.
func WithTaskTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.timeout = d }
}

// New creates a scheduler with the given quiet period.
// PRE: delay >= 0 (0 uses DefaultDelay)
// POST: Returns an idle scheduler
func New(delay time.Duration, opts ...Option) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	s := &Scheduler{
		delay:     delay,
		timeout:   DefaultTaskTimeout,
		afterFunc: StdAfterFunc,
		pending:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues task under key, replacing and rescheduling any pending task
// for the same key. Other keys are unaffected.
func (s *Scheduler) Schedule(key string, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		slog.Warn("coalesce_schedule_after_stop", "key", key)
		return
	}
	if prev, ok := s.pending[key]; ok {
		prev.timer.Stop()
	}
	s.seq++
	seq := s.seq
	e := &entry{task: task, seq: seq}
	e.timer = s.afterFunc(s.delay, func() { s.fire(key, seq) })
	s.pending[key] = e
}

// Cancel drops the pending task for key. Returns true if one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.pending, key)
	return true
}

// Pending reports whether a task is waiting for key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Flush runs every pending task now and waits for in-flight runs.
// The first task error is returned; all tasks are attempted.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	due := make(map[string]*entry, len(s.pending))
	for key, e := range s.pending {
		e.timer.Stop()
		due[key] = e
	}
	s.pending = make(map[string]*entry)
	s.mu.Unlock()

	var firstErr error
	for key, e := range due {
		if err := s.run(ctx, key, e.task); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.running.Wait()
	return firstErr
}

// Stop cancels all pending tasks and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, key)
	}
	s.stopped = true
}

func (s *Scheduler) fire(key string, seq uint64) {
	s.mu.Lock()
	e, ok := s.pending[key]
	if !ok || e.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.run(ctx, key, e.task)
}

func (s *Scheduler) run(ctx context.Context, key string, task Task) error {
	start := time.Now()
	err := task(ctx)
	if s.observe != nil {
		s.observe(key, time.Since(start), err)
	}
	if err != nil {
		slog.Error("coalesce_task_failed", "key", key, "error", err.Error())
		return err
	}
	slog.Debug("coalesce_task_done", "key", key)
	return nil
}
