package usecase

import (
	"context"
	"testing"
	"time"

	feastoutadapter "feastly/internal/modules/feast/adapter/out"
	"feastly/internal/modules/feast/service"
	"feastly/internal/platform/clock"
	"feastly/internal/platform/id"
)

type nopScheduler struct{}

func (nopScheduler) Every(time.Duration, func()) error { return nil }
func (nopScheduler) Start()                            {}
func (nopScheduler) Stop()                             {}

func TestCloseReleasesContextWatcher(t *testing.T) {
	t.Parallel()
	repo := feastoutadapter.NewKVWindowRepository(feastoutadapter.NewMemoryKeyValueStore())
	engine := service.NewEngine(context.Background(), clock.SystemClock{}, id.UUID{}, repo, nil)
	uc := NewInteractor(engine, nopScheduler{}, nil, time.Second).(*Interactor)

	// The context never ends, so only Close can stop the watcher.
	if err := uc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := uc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	exited := make(chan struct{})
	go func() {
		uc.watch.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatalf("context watcher still running after Close")
	}
}
