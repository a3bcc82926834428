package out

import (
	"context"
	"io"
	"time"

	"feastly/internal/modules/feast/domain"
)

// KeyValueStore is the host's local persistent key-value storage. Get
// returns apperrors.ErrNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// WindowRepository persists the history sequence and the current window
// under independent entries.
type WindowRepository interface {
	LoadHistory(ctx context.Context) ([]domain.FeastWindow, error)
	LoadCurrent(ctx context.Context) (domain.FeastWindow, error)
	Save(ctx context.Context, state domain.State) error
}

// Scheduler runs registered jobs at a fixed interval without overlap.
type Scheduler interface {
	Every(interval time.Duration, job func()) error
	Start()
	Stop()
}

type CalendarExporter interface {
	Export(ctx context.Context, windows []domain.FeastWindow, w io.Writer) error
}
