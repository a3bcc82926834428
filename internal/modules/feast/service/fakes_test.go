package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"feastly/internal/modules/feast/domain"
	apperrors "feastly/internal/platform/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("win-%d", s.n)
}

// memRepo keeps the last saved state and counts writes.
type memRepo struct {
	mu       sync.Mutex
	history  []domain.FeastWindow
	current  *domain.FeastWindow
	saves    int
	failSave bool
	badLoad  bool
}

func (r *memRepo) LoadHistory(context.Context) ([]domain.FeastWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.badLoad {
		return nil, errors.New("decode feast history: unexpected end of JSON input")
	}
	out := make([]domain.FeastWindow, len(r.history))
	copy(out, r.history)
	return out, nil
}

func (r *memRepo) LoadCurrent(context.Context) (domain.FeastWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return domain.FeastWindow{}, apperrors.ErrNoActiveWindow
	}
	return *r.current, nil
}

func (r *memRepo) Save(_ context.Context, state domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errors.New("disk full")
	}
	r.saves++
	clone := state.Clone()
	r.history = clone.History
	r.current = clone.Current
	return nil
}

func (r *memRepo) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
