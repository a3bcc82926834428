package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	feastoutadapter "feastly/internal/modules/feast/adapter/out"
	"feastly/internal/modules/feast/dto"
	feastin "feastly/internal/modules/feast/port/in"
	"feastly/internal/modules/feast/service"
	"feastly/internal/modules/feast/usecase"
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

type fakeID struct {
	mu sync.Mutex
	n  int
}

func (f *fakeID) New() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return fmt.Sprintf("win-%d", f.n)
}

type fakeScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	job      func()
	started  bool
	stopped  bool
}

func (s *fakeScheduler) Every(interval time.Duration, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	s.job = job
	return nil
}

func (s *fakeScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
}

func (s *fakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *fakeScheduler) Fire() {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	job()
}

func (s *fakeScheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

var jan1 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func newUsecase(t *testing.T) (feastin.Usecase, *fakeClock, *fakeScheduler) {
	t.Helper()
	clk := &fakeClock{now: jan1}
	repo := feastoutadapter.NewKVWindowRepository(feastoutadapter.NewMemoryKeyValueStore())
	engine := service.NewEngine(context.Background(), clk, &fakeID{}, repo, nil)
	scheduler := &fakeScheduler{}
	return usecase.NewInteractor(engine, scheduler, feastoutadapter.NewICSExporter(), time.Second), clk, scheduler
}

func TestBeginAtMapsPickedTimeToWholeHours(t *testing.T) {
	t.Parallel()
	uc, clk, _ := newUsecase(t)
	picked := jan1.Add(12*time.Hour + 40*time.Minute)
	clk.Set(jan1.Add(time.Minute))

	out, err := uc.BeginAt(context.Background(), dto.BeginAtInput{Picked: picked})
	if err != nil {
		t.Fatalf("begin at: %v", err)
	}
	if out.Hours != 13 {
		t.Fatalf("expected 13 hours, got %d", out.Hours)
	}
	wantEnd := jan1.Add(time.Minute + 13*time.Hour)
	if !out.Window.EndDate.Equal(wantEnd) {
		t.Fatalf("end should be rebased on confirmation time: got %s want %s", out.Window.EndDate, wantEnd)
	}
}

func TestBeginReportsDisplacedWindow(t *testing.T) {
	t.Parallel()
	uc, _, _ := newUsecase(t)
	first, err := uc.Begin(context.Background(), dto.BeginInput{Duration: 16 * time.Hour})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	second, err := uc.Begin(context.Background(), dto.BeginInput{Duration: 8 * time.Hour})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if second.DisplacedID != first.Window.ID {
		t.Fatalf("expected displaced %s, got %q", first.Window.ID, second.DisplacedID)
	}
	history, _ := uc.History(context.Background())
	if len(history) != 2 || history[0].IsActive || !history[1].IsActive {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestStatusReflectsCurrentWindow(t *testing.T) {
	t.Parallel()
	uc, clk, _ := newUsecase(t)
	if _, err := uc.Begin(context.Background(), dto.BeginInput{Duration: 16 * time.Hour}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	clk.Set(jan1.Add(4 * time.Hour))
	status, err := uc.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.HasActive || status.Current.TimeRemainingFormatted != "12:00" || status.Current.Progress != 0.25 {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Current.FormattedDuration != "16h" {
		t.Fatalf("expected 16h, got %s", status.Current.FormattedDuration)
	}
}

func TestStartRegistersTickAndCompletes(t *testing.T) {
	t.Parallel()
	uc, clk, scheduler := newUsecase(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := uc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := uc.Start(ctx); err != nil {
		t.Fatalf("second start should be a no-op: %v", err)
	}
	if scheduler.interval != time.Second || !scheduler.started {
		t.Fatalf("scheduler not configured: %+v", scheduler)
	}

	notified := make(chan dto.StatusOutput, 4)
	unsubscribe := uc.Subscribe(func(status dto.StatusOutput) { notified <- status })
	defer unsubscribe()

	if _, err := uc.Begin(ctx, dto.BeginInput{Duration: 8 * time.Hour}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	<-notified

	clk.Set(jan1.Add(8 * time.Hour))
	scheduler.Fire()
	status := <-notified
	if status.HasActive {
		t.Fatalf("tick at end time should complete the window")
	}
	if uc.HasActive(ctx) {
		t.Fatalf("usecase should report no active window")
	}
}

func TestCloseStopsSchedulerOnce(t *testing.T) {
	t.Parallel()
	uc, _, scheduler := newUsecase(t)
	if err := uc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := uc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := uc.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !scheduler.Stopped() {
		t.Fatalf("scheduler should be stopped")
	}
	if err := uc.Start(context.Background()); err == nil {
		t.Fatalf("start after close should fail")
	}
}

func TestContextCancelClosesUsecase(t *testing.T) {
	t.Parallel()
	uc, _, scheduler := newUsecase(t)
	ctx, cancel := context.WithCancel(context.Background())
	if err := uc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for !scheduler.Stopped() {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler not stopped after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTimeOptionsCarryLabels(t *testing.T) {
	t.Parallel()
	uc, _, _ := newUsecase(t)
	options, err := uc.TimeOptions(context.Background())
	if err != nil {
		t.Fatalf("time options: %v", err)
	}
	if len(options) != 64 {
		t.Fatalf("expected 64 options, got %d", len(options))
	}
	first := options[0]
	if first.Label != "6:00 PM" || first.DayLabel != "today" || first.Hours != 8 {
		t.Fatalf("unexpected first option %+v", first)
	}
	last := options[63]
	if last.DayLabel != "tomorrow" || last.Hours != 24 {
		t.Fatalf("unexpected last option %+v", last)
	}
}

func TestWindowsForDateAndExport(t *testing.T) {
	t.Parallel()
	uc, _, _ := newUsecase(t)
	if _, err := uc.Begin(context.Background(), dto.BeginInput{Duration: 16 * time.Hour}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	windows, err := uc.WindowsForDate(context.Background(), jan1)
	if err != nil || len(windows) != 1 {
		t.Fatalf("expected one window, got %d err=%v", len(windows), err)
	}

	var buf bytes.Buffer
	out, err := uc.ExportICS(context.Background(), &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Windows != 1 || !strings.Contains(buf.String(), "UID:"+windows[0].ID+"@feastly") {
		t.Fatalf("unexpected export %+v:\n%s", out, buf.String())
	}
}

func TestShiftSelectedDate(t *testing.T) {
	t.Parallel()
	uc, _, _ := newUsecase(t)
	status, err := uc.ShiftSelectedDate(context.Background(), -1)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if status.Changed {
		t.Fatalf("shifting before Jan 1 must be refused")
	}
	status, _ = uc.ShiftSelectedDate(context.Background(), 2)
	if !status.Changed || status.SelectedDate.Day() != 3 {
		t.Fatalf("expected Jan 3, got %+v", status)
	}
}
