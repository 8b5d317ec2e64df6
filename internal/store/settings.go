package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Settings is the single versioned snapshot of the global feature flags.
type Settings struct {
	HaikuModelEnabled   bool
	MaxTokensPerRequest int
	EnableCaching       bool
	Version             int64
	UpdatedAt           time.Time
	UpdatedBy           *uuid.UUID
}

// SettingsUpdate carries the fields to change; nil leaves a field as is.
type SettingsUpdate struct {
	HaikuModelEnabled   *bool
	MaxTokensPerRequest *int
	EnableCaching       *bool
}

// GetSettings returns the current snapshot, materializing the default row
// on first access.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	settings, err := s.querySettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}

	// Concurrent first readers race here; ON CONFLICT keeps it harmless.
	if _, err := s.pool.Exec(ctx, `
		INSERT INTO system_settings (id) VALUES (1)
		ON CONFLICT (id) DO NOTHING`); err != nil {
		return Settings{}, fmt.Errorf("init settings: %w", err)
	}

	settings, err = s.querySettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies the update iff the caller's version matches the
// stored one; a mismatch returns ErrVersionConflict.
func (s *Store) UpdateSettings(ctx context.Context, expectedVersion int64, update SettingsUpdate, updatedBy uuid.UUID) (Settings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return Settings{}, err
	}

	next := current
	if update.HaikuModelEnabled != nil {
		next.HaikuModelEnabled = *update.HaikuModelEnabled
	}
	if update.MaxTokensPerRequest != nil {
		next.MaxTokensPerRequest = *update.MaxTokensPerRequest
	}
	if update.EnableCaching != nil {
		next.EnableCaching = *update.EnableCaching
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE system_settings
		SET haiku_model_enabled = $1,
			max_tokens_per_request = $2,
			enable_caching = $3,
			version = version + 1,
			updated_at = now(),
			updated_by = $4
		WHERE id = 1 AND version = $5
		RETURNING haiku_model_enabled, max_tokens_per_request, enable_caching,
			version, updated_at, updated_by`,
		next.HaikuModelEnabled, next.MaxTokensPerRequest, next.EnableCaching,
		updatedBy, expectedVersion)

	settings, err := scanSettings(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrVersionConflict
		}
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}
	return settings, nil
}

func (s *Store) querySettings(ctx context.Context) (Settings, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT haiku_model_enabled, max_tokens_per_request, enable_caching,
			version, updated_at, updated_by
		FROM system_settings WHERE id = 1`)
	return scanSettings(row)
}

func scanSettings(row pgx.Row) (Settings, error) {
	var st Settings
	err := row.Scan(&st.HaikuModelEnabled, &st.MaxTokensPerRequest, &st.EnableCaching,
		&st.Version, &st.UpdatedAt, &st.UpdatedBy)
	return st, err
}
