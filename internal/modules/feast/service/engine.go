package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"feastly/internal/modules/feast/domain"
	feastout "feastly/internal/modules/feast/port/out"
	"feastly/internal/platform/clock"
	apperrors "feastly/internal/platform/errors"
	"feastly/internal/platform/id"
)

// Snapshot is a consistent copy of the engine state taken after a fully
// applied mutation or tick.
type Snapshot struct {
	Now          time.Time
	State        domain.State
	SelectedDate time.Time
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Engine owns the feast window collection and the single current window.
// Every mutation, including its persistence write, runs under one lock so a
// tick never observes a half-applied change. Subscribers are called in
// registration order after each mutation and tick; they must not call
// mutating engine methods synchronously.
type Engine struct {
	clock clock.Clock
	ids   id.Generator
	repo  feastout.WindowRepository
	log   hclog.Logger

	mu       sync.Mutex
	state    domain.State
	selected time.Time

	deliverMu sync.Mutex
	subsMu    sync.Mutex
	subs      []subscriber
	nextSubID int
}

// NewEngine builds the engine and loads persisted state once.
func NewEngine(ctx context.Context, clk clock.Clock, ids id.Generator, repo feastout.WindowRepository, logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	e := &Engine{
		clock: clk,
		ids:   ids,
		repo:  repo,
		log:   logger.Named("engine"),
	}
	now := clk.Now()
	e.selected = now
	e.load(ctx, now)
	return e
}

func (e *Engine) load(ctx context.Context, now time.Time) {
	history, err := e.repo.LoadHistory(ctx)
	if err != nil {
		e.log.Warn("history unreadable, starting empty", "error", err)
		history = nil
	}
	loaded := domain.State{History: history}

	current, err := e.repo.LoadCurrent(ctx)
	switch {
	case err == nil:
		loaded.Current = &current
	case errors.Is(err, apperrors.ErrNoActiveWindow):
	default:
		e.log.Warn("current window unreadable, ignoring", "error", err)
	}

	reconciled, changed := loaded.Reconcile(now)
	e.state = reconciled
	if changed {
		e.log.Info("reconciled persisted state", "history", len(reconciled.History), "current", reconciled.Current != nil)
		e.persist(ctx)
	}
}

// Begin starts a window of the given duration at the current instant. A
// window that is still current is archived as inactive and replaced.
func (e *Engine) Begin(ctx context.Context, duration time.Duration) (domain.FeastWindow, *domain.FeastWindow, error) {
	if duration <= 0 {
		return domain.FeastWindow{}, nil, fmt.Errorf("%w: duration must be positive, got %s", apperrors.ErrInvalidInput, duration)
	}
	e.mu.Lock()
	now := e.clock.Now()
	window := domain.FeastWindow{
		ID:        e.ids.New(),
		StartDate: now,
		EndDate:   now.Add(duration),
		IsActive:  true,
	}
	next, displaced := e.state.Begin(window)
	if displaced != nil {
		e.log.Info("begin replaced running window", "displaced", displaced.ID, "window", window.ID)
	}
	e.state = next
	e.persist(ctx)
	e.publishLocked(now)
	return window, displaced, nil
}

// Complete archives the current window. It reports false when there was no
// current window.
func (e *Engine) Complete(ctx context.Context) bool {
	e.mu.Lock()
	done := e.completeLocked(ctx)
	e.publishLocked(e.clock.Now())
	return done
}

func (e *Engine) completeLocked(ctx context.Context) bool {
	next, ok := e.state.Complete()
	if !ok {
		return false
	}
	e.log.Debug("window completed", "window", e.state.Current.ID)
	e.state = next
	e.persist(ctx)
	return true
}

// Cancel removes the current window from history. It reports false when
// there was no current window.
func (e *Engine) Cancel(ctx context.Context) bool {
	e.mu.Lock()
	next, ok := e.state.Cancel()
	if ok {
		e.log.Debug("window cancelled", "window", e.state.Current.ID)
		e.state = next
		e.persist(ctx)
	}
	e.publishLocked(e.clock.Now())
	return ok
}

// Tick completes the current window once its end has passed and always
// notifies subscribers so countdowns stay fresh.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	now := e.clock.Now()
	if e.state.Current != nil && e.state.Current.Expired(now) {
		e.completeLocked(ctx)
	}
	e.publishLocked(now)
}

func (e *Engine) HasActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Current != nil && e.state.Current.IsActive
}

// WindowsForDate returns history records that started on date's calendar
// day in the device zone.
func (e *Engine) WindowsForDate(date time.Time) []domain.FeastWindow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.WindowsOn(e.state.History, date, e.clock.Now().Location())
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.clock.Now())
}

func (e *Engine) SelectDate(date time.Time) {
	e.mu.Lock()
	e.selected = date
	e.publishLocked(e.clock.Now())
}

// ShiftSelectedDate moves the browsed date by days, staying inside the
// current month. It reports whether the date moved.
func (e *Engine) ShiftSelectedDate(days int) bool {
	e.mu.Lock()
	now := e.clock.Now()
	target, ok := domain.ShiftDay(e.selected, now, days)
	if ok {
		e.selected = target
	}
	e.publishLocked(now)
	return ok
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (e *Engine) Subscribe(fn func(Snapshot)) func() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	e.nextSubID++
	subID := e.nextSubID
	e.subs = append(e.subs, subscriber{id: subID, fn: fn})
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		for i, s := range e.subs {
			if s.id == subID {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// persist writes the state. Failures are logged and dropped; memory stays
// authoritative until the next successful save.
func (e *Engine) persist(ctx context.Context) {
	if err := e.repo.Save(ctx, e.state); err != nil {
		e.log.Warn("persist feast windows failed", "error", err)
	}
}

func (e *Engine) snapshotLocked(now time.Time) Snapshot {
	return Snapshot{Now: now, State: e.state.Clone(), SelectedDate: e.selected}
}

// publishLocked releases e.mu and delivers the snapshot. Delivery order
// matches mutation order because deliverMu is taken before e.mu is dropped.
func (e *Engine) publishLocked(now time.Time) {
	snap := e.snapshotLocked(now)
	e.deliverMu.Lock()
	e.mu.Unlock()
	defer e.deliverMu.Unlock()

	e.subsMu.Lock()
	subs := make([]subscriber, len(e.subs))
	copy(subs, e.subs)
	e.subsMu.Unlock()
	for _, s := range subs {
		s.fn(snap)
	}
}
