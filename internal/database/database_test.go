package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-scheduler/internal/models"
)

func TestResetReportsCounts(t *testing.T) {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.Profile)(nil),
		(*models.Event)(nil),
		(*models.EventProfile)(nil),
		(*models.EventLog)(nil),
	} {
		require.NoError(t, db.ResetModel(ctx, model))
	}

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	profiles := []models.Profile{
		{ID: "a", Name: "A", Timezone: "UTC", CreatedAt: now},
		{ID: "b", Name: "B", Timezone: "UTC", CreatedAt: now},
	}
	_, err = db.NewInsert().Model(&profiles).Exec(ctx)
	require.NoError(t, err)

	event := models.Event{ID: "e1", Timezone: "UTC", StartDateTime: now, EndDateTime: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now}
	_, err = db.NewInsert().Model(&event).Exec(ctx)
	require.NoError(t, err)

	slots := []models.EventProfile{{EventID: "e1", Position: 0, ProfileID: "a"}, {EventID: "e1", Position: 1, ProfileID: "b"}}
	_, err = db.NewInsert().Model(&slots).Exec(ctx)
	require.NoError(t, err)

	logs := []models.EventLog{
		{ID: "l1", EventID: "e1", ProfileID: "a", Action: models.ActionCreated, Timestamp: now, Timezone: "UTC"},
		{ID: "l2", EventID: "e1", ProfileID: "a", Action: models.ActionUpdated, Field: models.FieldTimezone, Timestamp: now, Timezone: "UTC"},
		{ID: "l3", EventID: "e1", ProfileID: "b", Action: models.ActionUpdated, Field: models.FieldTimezone, Timestamp: now, Timezone: "UTC"},
	}
	_, err = db.NewInsert().Model(&logs).Exec(ctx)
	require.NoError(t, err)

	counts, err := Reset(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, ResetCounts{Profiles: 2, Events: 1, Participants: 2, Logs: 3}, counts)

	n, err := db.NewSelect().Model((*models.Profile)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	counts, err = Reset(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, ResetCounts{}, counts)
}
