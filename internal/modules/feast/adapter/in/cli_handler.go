package in

import (
	"context"
	"io"
	"time"

	"feastly/internal/modules/feast/dto"
	feastin "feastly/internal/modules/feast/port/in"
)

type CLIHandler struct {
	usecase feastin.Usecase
}

func NewCLIHandler(usecase feastin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) BeginHours(ctx context.Context, hours int) (dto.BeginOutput, error) {
	return h.usecase.Begin(ctx, dto.BeginInput{Duration: time.Duration(hours) * time.Hour})
}

func (h CLIHandler) BeginAt(ctx context.Context, picked time.Time) (dto.BeginOutput, error) {
	return h.usecase.BeginAt(ctx, dto.BeginAtInput{Picked: picked})
}

func (h CLIHandler) Complete(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Complete(ctx)
}

func (h CLIHandler) Cancel(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Cancel(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) History(ctx context.Context) ([]dto.WindowOutput, error) {
	return h.usecase.History(ctx)
}

func (h CLIHandler) WindowsForDate(ctx context.Context, date time.Time) ([]dto.WindowOutput, error) {
	return h.usecase.WindowsForDate(ctx, date)
}

func (h CLIHandler) HasActive(ctx context.Context) bool {
	return h.usecase.HasActive(ctx)
}

func (h CLIHandler) SelectDate(ctx context.Context, date time.Time) (dto.StatusOutput, error) {
	return h.usecase.SelectDate(ctx, date)
}

func (h CLIHandler) ShiftSelectedDate(ctx context.Context, days int) (dto.StatusOutput, error) {
	return h.usecase.ShiftSelectedDate(ctx, days)
}

func (h CLIHandler) TimeOptions(ctx context.Context) ([]dto.TimeOptionOutput, error) {
	return h.usecase.TimeOptions(ctx)
}

func (h CLIHandler) ExportICS(ctx context.Context, w io.Writer) (dto.ExportOutput, error) {
	return h.usecase.ExportICS(ctx, w)
}

func (h CLIHandler) Subscribe(fn func(dto.StatusOutput)) func() {
	return h.usecase.Subscribe(fn)
}

func (h CLIHandler) Start(ctx context.Context) error {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Close() error {
	return h.usecase.Close()
}
