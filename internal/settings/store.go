package settings

import (
	"context"
	"fmt"

	"github.com/engleong-lee/stash/internal/models"
	"github.com/engleong-lee/stash/internal/store"
)

// Store persists the settings record. Reads always yield a complete record:
// whatever is stored is overlaid on models.DefaultSettings.
type Store struct {
	kv store.KV
}

// NewStore creates a settings store over kv.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Get returns the defaults overlaid by the stored (possibly partial) record.
func (s *Store) Get(ctx context.Context) (models.Settings, error) {
	// Decoding onto the defaults only overwrites fields present in the stored JSON.
	current := models.DefaultSettings()
	if _, err := s.kv.GetJSON(ctx, store.KeySettings, &current); err != nil {
		return models.DefaultSettings(), fmt.Errorf("load settings: %w", err)
	}
	return current, nil
}

// Set merges patch over the current settings and persists the full record.
func (s *Store) Set(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return current, err
	}

	updated := patch.Apply(current)
	if err := s.kv.PutJSON(ctx, store.KeySettings, updated); err != nil {
		return current, fmt.Errorf("save settings: %w", err)
	}
	return updated, nil
}
