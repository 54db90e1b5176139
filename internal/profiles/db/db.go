package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetProfileByID → one profile, ErrNotFound when missing
func (d *DB) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := d.Bun.NewSelect().
		Model(&profile).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfilesByIDs → every profile whose id is in ids, unknown ids are skipped
func (d *DB) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	err := d.Bun.NewSelect().
		Model(&profiles).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfileByName → nil without error when no profile has that name
func (d *DB) GetProfileByName(ctx context.Context, name string) (*models.Profile, error) {
	var profile models.Profile
	err := d.Bun.NewSelect().
		Model(&profile).
		Where("name = ?", name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (d *DB) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := d.Bun.NewSelect().
		Model(&profiles).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (d *DB) CreateProfile(ctx context.Context, profile models.Profile) error {
	_, err := d.Bun.NewInsert().Model(&profile).Exec(ctx)
	return err
}

func (d *DB) UpdateTimezone(ctx context.Context, id, tz string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Profile)(nil)).
		Set("timezone = ?", tz).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("profile %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
