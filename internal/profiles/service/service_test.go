package profiles_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-scheduler/internal/apperrors"
	"ms-scheduler/internal/clock"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
	profiles "ms-scheduler/internal/profiles/service"
)

type MockProfileDB struct {
	mock.Mock
}

func (m *MockProfileDB) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileDB) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileDB) GetProfileByName(ctx context.Context, name string) (*models.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileDB) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileDB) CreateProfile(ctx context.Context, profile models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileDB) UpdateTimezone(ctx context.Context, id, tz string) error {
	return m.Called(ctx, id, tz).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, id string) (*models.Profile, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.Profile), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, profile models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var now = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

func newService(db *MockProfileDB, cache profiles.ProfileCache) *profiles.ProfileService {
	return profiles.NewProfileService(db, cache, clock.NewFixed(now), logger.NewWriterLogger(io.Discard))
}

func TestCreateProfile_TrimsAndDefaultsZone(t *testing.T) {
	db := new(MockProfileDB)
	db.On("GetProfileByName", mock.Anything, "Alice").Return(nil, nil)
	db.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p models.Profile) bool {
		return p.Name == "Alice" && p.Timezone == "America/New_York" && p.ID != "" && p.CreatedAt.Equal(now)
	})).Return(nil)

	p, err := newService(db, nil).CreateProfile(context.Background(), models.CreateProfileRequest{Name: "  Alice  "})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "America/New_York", p.Timezone)
	db.AssertExpectations(t)
}

func TestCreateProfile_Validation(t *testing.T) {
	db := new(MockProfileDB)
	svc := newService(db, nil)

	_, err := svc.CreateProfile(context.Background(), models.CreateProfileRequest{Name: "   "})
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
	assert.Equal(t, "Profile name is required", apperrors.MessageOf(err))

	_, err = svc.CreateProfile(context.Background(), models.CreateProfileRequest{Name: "Bob", Timezone: "Nope/Zone"})
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTimezone))

	db.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything)
}

func TestCreateProfile_DuplicateName(t *testing.T) {
	db := new(MockProfileDB)
	db.On("GetProfileByName", mock.Anything, "Alice").Return(&models.Profile{ID: "p1", Name: "Alice"}, nil)

	_, err := newService(db, nil).CreateProfile(context.Background(), models.CreateProfileRequest{Name: "Alice", Timezone: "UTC"})
	assert.Equal(t, apperrors.Conflict, apperrors.KindOf(err))
	assert.Equal(t, "Profile with this name already exists", apperrors.MessageOf(err))
	db.AssertNotCalled(t, "CreateProfile", mock.Anything, mock.Anything)
}

func TestUpdateTimezone_InvalidatesCache(t *testing.T) {
	db := new(MockProfileDB)
	cache := new(MockCache)
	db.On("GetProfileByID", mock.Anything, "p1").Return(&models.Profile{ID: "p1", Name: "A", Timezone: "UTC"}, nil)
	db.On("UpdateTimezone", mock.Anything, "p1", "Asia/Tokyo").Return(nil)
	cache.On("Invalidate", mock.Anything, "p1").Return(nil)

	p, err := newService(db, cache).UpdateTimezone(context.Background(), "p1", models.UpdateProfileRequest{Timezone: "Asia/Tokyo"})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", p.Timezone)
	db.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUpdateTimezone_EmptyKeepsCurrent(t *testing.T) {
	db := new(MockProfileDB)
	db.On("GetProfileByID", mock.Anything, "p1").Return(&models.Profile{ID: "p1", Timezone: "UTC"}, nil)

	p, err := newService(db, nil).UpdateTimezone(context.Background(), "p1", models.UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, "UTC", p.Timezone)
	db.AssertNotCalled(t, "UpdateTimezone", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTimezone_Errors(t *testing.T) {
	db := new(MockProfileDB)
	db.On("GetProfileByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)
	db.On("GetProfileByID", mock.Anything, "p1").Return(&models.Profile{ID: "p1", Timezone: "UTC"}, nil)
	svc := newService(db, nil)

	_, err := svc.UpdateTimezone(context.Background(), "ghost", models.UpdateProfileRequest{Timezone: "UTC"})
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))

	_, err = svc.UpdateTimezone(context.Background(), "p1", models.UpdateProfileRequest{Timezone: "Bad/Zone"})
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
}

func TestGetProfile_ReadThrough(t *testing.T) {
	db := new(MockProfileDB)
	cache := new(MockCache)
	stored := &models.Profile{ID: "p1", Name: "A", Timezone: "UTC"}

	cache.On("Get", mock.Anything, "p1").Return(nil, false).Once()
	db.On("GetProfileByID", mock.Anything, "p1").Return(stored, nil).Once()
	cache.On("Set", mock.Anything, *stored).Return(errors.New("redis down"))

	svc := newService(db, cache)
	p, err := svc.GetProfile(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	cache.On("Get", mock.Anything, "p1").Return(stored, true).Once()
	p, err = svc.GetProfile(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)

	db.AssertNumberOfCalls(t, "GetProfileByID", 1)
}

func TestFindByIDs_MixesCacheAndDB(t *testing.T) {
	db := new(MockProfileDB)
	cache := new(MockCache)

	cache.On("Get", mock.Anything, "p1").Return(&models.Profile{ID: "p1", Name: "Cached"}, true)
	cache.On("Get", mock.Anything, "p2").Return(nil, false)
	cache.On("Get", mock.Anything, "ghost").Return(nil, false)
	db.On("GetProfilesByIDs", mock.Anything, []string{"p2", "ghost"}).Return([]models.Profile{{ID: "p2", Name: "Stored"}}, nil)
	cache.On("Set", mock.Anything, models.Profile{ID: "p2", Name: "Stored"}).Return(nil)

	found, err := newService(db, cache).FindByIDs(context.Background(), []string{"p1", "p2", "p1", "ghost"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "Cached", found["p1"].Name)
	assert.Equal(t, "Stored", found["p2"].Name)
	db.AssertExpectations(t)
}

func TestListProfiles(t *testing.T) {
	db := new(MockProfileDB)
	db.On("ListProfiles", mock.Anything).Return([]models.Profile{{ID: "b"}, {ID: "a"}}, nil)

	list, err := newService(db, nil).ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
