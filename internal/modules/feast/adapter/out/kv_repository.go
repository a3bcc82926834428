package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"feastly/internal/modules/feast/domain"
	feastout "feastly/internal/modules/feast/port/out"
	apperrors "feastly/internal/platform/errors"
)

const (
	HistoryKey = "scheduledFeastWindows"
	CurrentKey = "currentFeastWindow"
)

// KVWindowRepository stores history and the current window as two JSON
// entries in a key-value store.
type KVWindowRepository struct {
	store feastout.KeyValueStore
}

func NewKVWindowRepository(store feastout.KeyValueStore) feastout.WindowRepository {
	return &KVWindowRepository{store: store}
}

func (r *KVWindowRepository) LoadHistory(ctx context.Context) ([]domain.FeastWindow, error) {
	payload, err := r.store.Get(ctx, HistoryKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []domain.FeastWindow{}, nil
		}
		return nil, fmt.Errorf("read feast history: %w", err)
	}
	history := []domain.FeastWindow{}
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, fmt.Errorf("decode feast history: %w", err)
	}
	return history, nil
}

func (r *KVWindowRepository) LoadCurrent(ctx context.Context) (domain.FeastWindow, error) {
	payload, err := r.store.Get(ctx, CurrentKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.FeastWindow{}, apperrors.ErrNoActiveWindow
		}
		return domain.FeastWindow{}, fmt.Errorf("read current feast window: %w", err)
	}
	current := domain.FeastWindow{}
	if err := json.Unmarshal(payload, &current); err != nil {
		return domain.FeastWindow{}, fmt.Errorf("decode current feast window: %w", err)
	}
	if current.ID == "" {
		return domain.FeastWindow{}, apperrors.ErrNoActiveWindow
	}
	return current, nil
}

func (r *KVWindowRepository) Save(ctx context.Context, state domain.State) error {
	history := state.History
	if history == nil {
		history = []domain.FeastWindow{}
	}
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode feast history: %w", err)
	}
	if err := r.store.Set(ctx, HistoryKey, payload); err != nil {
		return fmt.Errorf("write feast history: %w", err)
	}

	if state.Current == nil {
		if err := r.store.Remove(ctx, CurrentKey); err != nil {
			return fmt.Errorf("clear current feast window: %w", err)
		}
		return nil
	}
	payload, err = json.Marshal(state.Current)
	if err != nil {
		return fmt.Errorf("encode current feast window: %w", err)
	}
	if err := r.store.Set(ctx, CurrentKey, payload); err != nil {
		return fmt.Errorf("write current feast window: %w", err)
	}
	return nil
}
