package usecase

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"feastly/internal/modules/feast/domain"
	"feastly/internal/modules/feast/dto"
	feastin "feastly/internal/modules/feast/port/in"
	feastout "feastly/internal/modules/feast/port/out"
	"feastly/internal/modules/feast/service"
)

type Interactor struct {
	engine    *service.Engine
	scheduler feastout.Scheduler
	exporter  feastout.CalendarExporter
	interval  time.Duration

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
	watch   sync.WaitGroup
}

func NewInteractor(engine *service.Engine, scheduler feastout.Scheduler, exporter feastout.CalendarExporter, interval time.Duration) feastin.Usecase {
	if interval <= 0 {
		interval = time.Second
	}
	return &Interactor{engine: engine, scheduler: scheduler, exporter: exporter, interval: interval, done: make(chan struct{})}
}

// Start registers the periodic status tick and runs it until ctx ends or
// Close is called.
func (i *Interactor) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.scheduler == nil {
		return fmt.Errorf("scheduler is not configured")
	}
	if i.closed {
		return fmt.Errorf("feast engine is closed")
	}
	if i.started {
		return nil
	}
	tickCtx := context.WithoutCancel(ctx)
	if err := i.scheduler.Every(i.interval, func() { i.engine.Tick(tickCtx) }); err != nil {
		return err
	}
	i.scheduler.Start()
	i.started = true
	i.watch.Add(1)
	go func() {
		defer i.watch.Done()
		select {
		case <-ctx.Done():
			_ = i.Close()
		case <-i.done:
		}
	}()
	return nil
}

func (i *Interactor) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	close(i.done)
	if i.started {
		i.scheduler.Stop()
	}
	return nil
}

func (i *Interactor) Begin(ctx context.Context, input dto.BeginInput) (dto.BeginOutput, error) {
	window, displaced, err := i.engine.Begin(ctx, input.Duration)
	if err != nil {
		return dto.BeginOutput{}, err
	}
	out := dto.BeginOutput{
		Window: toWindowOutput(window, window.StartDate),
		Hours:  int(input.Duration / time.Hour),
	}
	if displaced != nil {
		out.DisplacedID = displaced.ID
	}
	return out, nil
}

// BeginAt maps a picked option to whole hours and starts a window of that
// length from the current instant, not from the picked time.
func (i *Interactor) BeginAt(ctx context.Context, input dto.BeginAtInput) (dto.BeginOutput, error) {
	hours := domain.HoursForSelection(input.Picked, i.engine.Snapshot().Now)
	out, err := i.Begin(ctx, dto.BeginInput{Duration: time.Duration(hours) * time.Hour})
	if err != nil {
		return dto.BeginOutput{}, err
	}
	out.Hours = hours
	return out, nil
}

func (i *Interactor) Complete(ctx context.Context) (dto.StatusOutput, error) {
	changed := i.engine.Complete(ctx)
	return toStatus(i.engine.Snapshot(), changed), nil
}

func (i *Interactor) Cancel(ctx context.Context) (dto.StatusOutput, error) {
	changed := i.engine.Cancel(ctx)
	return toStatus(i.engine.Snapshot(), changed), nil
}

func (i *Interactor) Status(_ context.Context) (dto.StatusOutput, error) {
	return toStatus(i.engine.Snapshot(), false), nil
}

func (i *Interactor) History(_ context.Context) ([]dto.WindowOutput, error) {
	snap := i.engine.Snapshot()
	return toWindowOutputs(snap.State.History, snap.Now), nil
}

func (i *Interactor) WindowsForDate(_ context.Context, date time.Time) ([]dto.WindowOutput, error) {
	return toWindowOutputs(i.engine.WindowsForDate(date), i.engine.Snapshot().Now), nil
}

func (i *Interactor) HasActive(_ context.Context) bool {
	return i.engine.HasActive()
}

func (i *Interactor) SelectDate(_ context.Context, date time.Time) (dto.StatusOutput, error) {
	i.engine.SelectDate(date)
	return toStatus(i.engine.Snapshot(), true), nil
}

func (i *Interactor) ShiftSelectedDate(_ context.Context, days int) (dto.StatusOutput, error) {
	moved := i.engine.ShiftSelectedDate(days)
	return toStatus(i.engine.Snapshot(), moved), nil
}

func (i *Interactor) TimeOptions(_ context.Context) ([]dto.TimeOptionOutput, error) {
	now := i.engine.Snapshot().Now
	options := domain.GenerateTimeOptions(now)
	out := make([]dto.TimeOptionOutput, 0, len(options))
	for _, at := range options {
		out = append(out, dto.TimeOptionOutput{
			At:       at,
			Label:    at.Format("3:04 PM"),
			DayLabel: domain.DayLabel(at, now),
			Hours:    domain.HoursForSelection(at, now),
		})
	}
	return out, nil
}

func (i *Interactor) ExportICS(ctx context.Context, w io.Writer) (dto.ExportOutput, error) {
	if i.exporter == nil {
		return dto.ExportOutput{}, fmt.Errorf("calendar exporter is not configured")
	}
	history := i.engine.Snapshot().State.History
	if err := i.exporter.Export(ctx, history, w); err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Windows: len(history)}, nil
}

func (i *Interactor) Subscribe(fn func(dto.StatusOutput)) func() {
	return i.engine.Subscribe(func(snap service.Snapshot) {
		fn(toStatus(snap, false))
	})
}

func toStatus(snap service.Snapshot, changed bool) dto.StatusOutput {
	out := dto.StatusOutput{
		Now:          snap.Now,
		SelectedDate: snap.SelectedDate,
		HistoryCount: len(snap.State.History),
		Changed:      changed,
	}
	if current := snap.State.Current; current != nil && current.IsActive {
		out.HasActive = true
		out.Current = toWindowOutput(*current, snap.Now)
	}
	return out
}

func toWindowOutputs(windows []domain.FeastWindow, now time.Time) []dto.WindowOutput {
	out := make([]dto.WindowOutput, 0, len(windows))
	for _, w := range windows {
		out = append(out, toWindowOutput(w, now))
	}
	return out
}

func toWindowOutput(w domain.FeastWindow, now time.Time) dto.WindowOutput {
	return dto.WindowOutput{
		ID:                     w.ID,
		StartDate:              w.StartDate,
		EndDate:                w.EndDate,
		IsActive:               w.IsActive,
		Duration:               w.Duration(),
		FormattedDuration:      w.FormattedDuration(),
		TimeRemaining:          w.TimeRemaining(now),
		TimeRemainingFormatted: w.TimeRemainingFormatted(now),
		Progress:               w.ProgressPercentage(now),
	}
}
