package domain

import (
	"fmt"
	"time"
)

// State is the persisted engine state: the current window, if any, and the
// full history in insertion order. Transitions never mutate the receiver.
type State struct {
	Current *FeastWindow
	History []FeastWindow
}

func (s State) Clone() State {
	out := State{History: make([]FeastWindow, len(s.History))}
	copy(out.History, s.History)
	if s.Current != nil {
		current := *s.Current
		out.Current = &current
	}
	return out
}

func (s State) IndexOf(id string) int {
	for i, w := range s.History {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// Begin makes w the current window and appends it to history. A window that
// was still current is archived as inactive and returned as displaced.
func (s State) Begin(w FeastWindow) (State, *FeastWindow) {
	next := s.Clone()
	var displaced *FeastWindow
	if next.Current != nil {
		archived := *next.Current
		archived.IsActive = false
		next.upsert(archived)
		displaced = &archived
	}
	w.IsActive = true
	next.Current = &w
	next.History = append(next.History, w)
	return next, displaced
}

// Complete archives the current window in place. The bool is false when
// there was nothing to complete.
func (s State) Complete() (State, bool) {
	if s.Current == nil {
		return s, false
	}
	next := s.Clone()
	done := *next.Current
	done.IsActive = false
	if i := next.IndexOf(done.ID); i >= 0 {
		next.History[i] = done
	}
	next.Current = nil
	return next, true
}

// Cancel drops the current window from history entirely.
func (s State) Cancel() (State, bool) {
	if s.Current == nil {
		return s, false
	}
	next := s.Clone()
	if i := next.IndexOf(next.Current.ID); i >= 0 {
		next.History = append(next.History[:i], next.History[i+1:]...)
	}
	next.Current = nil
	return next, true
}

// Reconcile applies the load rules to freshly decoded state. A current
// window that is inactive or past its end is archived into history. A live
// current window is written into history, replacing a stale copy by id. Any other history
// record still flagged active is archived. The bool reports a change that
// must be written back.
func (s State) Reconcile(now time.Time) (State, bool) {
	next := s.Clone()
	changed := false
	if next.Current != nil {
		if !next.Current.IsActive || next.Current.Expired(now) {
			done := *next.Current
			done.IsActive = false
			next.upsert(done)
			next.Current = nil
			changed = true
		} else if i := next.IndexOf(next.Current.ID); i < 0 || !next.History[i].Same(*next.Current) {
			next.upsert(*next.Current)
			changed = true
		}
	}
	for i, w := range next.History {
		if !w.IsActive {
			continue
		}
		if next.Current != nil && w.ID == next.Current.ID {
			continue
		}
		next.History[i].IsActive = false
		changed = true
	}
	return next, changed
}

// CheckExclusive verifies that at most one history record is active and that
// it is the current window.
func (s State) CheckExclusive() error {
	active := 0
	for _, w := range s.History {
		if !w.IsActive {
			continue
		}
		active++
		if s.Current == nil || s.Current.ID != w.ID {
			return fmt.Errorf("window %s is active but not current", w.ID)
		}
	}
	if active > 1 {
		return fmt.Errorf("%d active windows in history", active)
	}
	if s.Current != nil && active == 0 {
		return fmt.Errorf("current window %s missing from history", s.Current.ID)
	}
	return nil
}

func (s *State) upsert(w FeastWindow) {
	if i := s.IndexOf(w.ID); i >= 0 {
		s.History[i] = w
		return
	}
	s.History = append(s.History, w)
}
