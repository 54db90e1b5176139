package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/clock"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	"ms-scheduler/internal/timezone"
)

type ProfileDBLayer interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	GetProfileByName(ctx context.Context, name string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	CreateProfile(ctx context.Context, profile models.Profile) error
	UpdateTimezone(ctx context.Context, id, tz string) error
}

// ProfileCache is optional; cache failures never fail a request.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*models.Profile, bool)
	Set(ctx context.Context, profile models.Profile) error
	Invalidate(ctx context.Context, id string) error
}

type ProfileService struct {
	DB     ProfileDBLayer
	Cache  ProfileCache
	Clock  clock.Clock
	Logger *logger.Logger
}

func NewProfileService(db ProfileDBLayer, cache ProfileCache, clk clock.Clock, log *logger.Logger) *ProfileService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &ProfileService{DB: db, Cache: cache, Clock: clk, Logger: log}
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	return s.DB.ListProfiles(ctx)
}

func (s *ProfileService) CreateProfile(ctx context.Context, req models.CreateProfileRequest) (*models.Profile, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.BadRequest, "Profile name is required")
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = timezone.DefaultZone
	}
	if !timezone.IsValidTimezone(tz) {
		return nil, apperrors.Wrap(apperrors.BadRequest, "Valid timezone is required", apperrors.ErrInvalidTimezone)
	}

	existing, err := s.DB.GetProfileByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile name: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Wrap(apperrors.Conflict, "Profile with this name already exists", apperrors.ErrDuplicateName)
	}

	profile := models.Profile{
		ID:        uuid.NewString(),
		Name:      name,
		Timezone:  tz,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.DB.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.Logger.Info("PROFILES", fmt.Sprintf("Created profile %s (%s, %s)", profile.ID, profile.Name, profile.Timezone))
	return &profile, nil
}

// UpdateTimezone changes the home zone; an empty tz keeps the current one.
func (s *ProfileService) UpdateTimezone(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.DB.GetProfileByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindOf(err), "Profile not found", err)
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" || tz == profile.Timezone {
		return profile, nil
	}
	if !timezone.IsValidTimezone(tz) {
		return nil, apperrors.Wrap(apperrors.BadRequest, "Valid timezone is required", apperrors.ErrInvalidTimezone)
	}

	if err := s.DB.UpdateTimezone(ctx, id, tz); err != nil {
		return nil, fmt.Errorf("failed to update profile %s: %w", id, err)
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, id); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("Failed to invalidate profile %s: %v", id, err))
		}
	}

	profile.Timezone = tz
	s.Logger.Info("PROFILES", fmt.Sprintf("Profile %s timezone set to %s", id, tz))
	return profile, nil
}

// GetProfile reads through the cache.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if s.Cache != nil {
		if p, ok := s.Cache.Get(ctx, id); ok {
			return p, nil
		}
	}
	profile, err := s.DB.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, *profile); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("Failed to cache profile %s: %v", id, err))
		}
	}
	return profile, nil
}

// FindByIDs returns the known profiles among ids keyed by id.
func (s *ProfileService) FindByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	found := make(map[string]models.Profile, len(ids))
	seen := make(map[string]struct{}, len(ids))
	var missing []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if s.Cache != nil {
			if p, ok := s.Cache.Get(ctx, id); ok {
				found[id] = *p
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return found, nil
	}

	profiles, err := s.DB.GetProfilesByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		found[p.ID] = p
		if s.Cache != nil {
			if err := s.Cache.Set(ctx, p); err != nil {
				s.Logger.Warn("CACHE", fmt.Sprintf("Failed to cache profile %s: %v", p.ID, err))
			}
		}
	}
	return found, nil
}
