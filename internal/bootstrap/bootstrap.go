package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	feastinadapter "feastly/internal/modules/feast/adapter/in"
	feastoutadapter "feastly/internal/modules/feast/adapter/out"
	feastout "feastly/internal/modules/feast/port/out"
	feastservice "feastly/internal/modules/feast/service"
	feastusecase "feastly/internal/modules/feast/usecase"
	"feastly/internal/platform/clock"
	"feastly/internal/platform/config"
	apperrors "feastly/internal/platform/errors"
	"feastly/internal/platform/id"
	uiapp "feastly/internal/ui/app"
)

// App is the composition root. It owns exactly one feast engine for the
// lifetime of the process.
type App struct {
	Config   config.Config
	Logger   hclog.Logger
	FeastCLI feastinadapter.CLIHandler

	closers []io.Closer
}

func New(ctx context.Context, cfg config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}

	store, err := app.openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	engine := feastservice.NewEngine(
		ctx,
		clock.SystemClock{Location: loc},
		id.UUID{},
		feastoutadapter.NewKVWindowRepository(store),
		logger,
	)
	feastUC := feastusecase.NewInteractor(
		engine,
		feastoutadapter.NewCronScheduler(logger),
		feastoutadapter.NewICSExporter(),
		cfg.TickInterval,
	)
	app.FeastCLI = feastinadapter.NewCLIHandler(feastUC)
	app.closers = append(app.closers, feastUC)
	return app, nil
}

func (a *App) openStore(cfg config.Config) (feastout.KeyValueStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		store, err := feastoutadapter.NewSQLiteKeyValueStore(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	case config.StoreFile:
		return feastoutadapter.NewFileKeyValueStore(cfg.KVDir), nil
	case config.StoreMemory:
		return feastoutadapter.NewMemoryKeyValueStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownBackend, cfg.Store)
	}
}

// Close stops the engine tick and releases storage in reverse order of
// acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(ctx context.Context, app *App) error {
	if err := app.FeastCLI.Start(ctx); err != nil {
		return err
	}
	model := uiapp.NewModel(app.FeastCLI, app.Config.DefaultHours)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
