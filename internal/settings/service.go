// Package settings exposes the versioned global configuration row.
package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ncecere/llm_observability/backend/internal/store"
)

// ErrInvalidMaxTokens rejects non-positive per-request token limits.
var ErrInvalidMaxTokens = errors.New("max_tokens_per_request must be > 0")

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) Get(ctx context.Context) (store.Settings, error) {
	return s.store.GetSettings(ctx)
}

// Update applies a compare-and-set write. The caller supplies the version
// it read; a stale version surfaces store.ErrVersionConflict and the
// caller re-reads before retrying.
func (s *Service) Update(ctx context.Context, expectedVersion int64, update store.SettingsUpdate, updatedBy uuid.UUID) (store.Settings, error) {
	if update.MaxTokensPerRequest != nil && *update.MaxTokensPerRequest <= 0 {
		return store.Settings{}, ErrInvalidMaxTokens
	}
	return s.store.UpdateSettings(ctx, expectedVersion, update, updatedBy)
}
