package in

import (
	"context"
	"io"
	"time"

	"feastly/internal/modules/feast/dto"
)

type Usecase interface {
	Begin(ctx context.Context, input dto.BeginInput) (dto.BeginOutput, error)
	BeginAt(ctx context.Context, input dto.BeginAtInput) (dto.BeginOutput, error)
	Complete(ctx context.Context) (dto.StatusOutput, error)
	Cancel(ctx context.Context) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	History(ctx context.Context) ([]dto.WindowOutput, error)
	WindowsForDate(ctx context.Context, date time.Time) ([]dto.WindowOutput, error)
	HasActive(ctx context.Context) bool
	SelectDate(ctx context.Context, date time.Time) (dto.StatusOutput, error)
	ShiftSelectedDate(ctx context.Context, days int) (dto.StatusOutput, error)
	TimeOptions(ctx context.Context) ([]dto.TimeOptionOutput, error)
	ExportICS(ctx context.Context, w io.Writer) (dto.ExportOutput, error)
	Subscribe(fn func(dto.StatusOutput)) (unsubscribe func())
	Start(ctx context.Context) error
	Close() error
}
