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

// ---------------- EVENTS ----------------

// GetEventByID → one event with its ordered participants
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	events := []models.Event{event}
	if err := d.loadParticipants(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// GetEventsByProfile → events the profile participates in, earliest start first
func (d *DB) GetEventsByProfile(ctx context.Context, profileID string) ([]models.Event, error) {
	participating := d.Bun.NewSelect().
		Model((*models.EventProfile)(nil)).
		Column("event_id").
		Where("profile_id = ?", profileID)

	events := []models.Event{}
	err := d.Bun.NewSelect().
		Model(&events).
		Where("id IN (?)", participating).
		Order("start_date_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if err := d.loadParticipants(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	return insertEvent(ctx, d.Bun, event)
}

func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	return updateEvent(ctx, d.Bun, event)
}

// CreateEventWithLog stores the event and its creation entry in one transaction.
func (d *DB) CreateEventWithLog(ctx context.Context, event models.Event, entry models.EventLog) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
		return insertLogs(ctx, tx, []models.EventLog{entry})
	})
}

// UpdateEventWithLogs stores the event then the entry batch; either both commit or neither does.
func (d *DB) UpdateEventWithLogs(ctx context.Context, event models.Event, entries []models.EventLog) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := updateEvent(ctx, tx, event); err != nil {
			return err
		}
		return insertLogs(ctx, tx, entries)
	})
}

func insertEvent(ctx context.Context, db bun.IDB, event models.Event) error {
	if _, err := db.NewInsert().Model(&event).Exec(ctx); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return writeParticipants(ctx, db, event)
}

func updateEvent(ctx context.Context, db bun.IDB, event models.Event) error {
	res, err := db.NewUpdate().
		Model(&event).
		Column("timezone", "start_date_time", "end_date_time", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("event %s: %w", event.ID, apperrors.ErrNotFound)
	}

	_, err = db.NewDelete().
		Model((*models.EventProfile)(nil)).
		Where("event_id = ?", event.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear participants: %w", err)
	}
	return writeParticipants(ctx, db, event)
}

func writeParticipants(ctx context.Context, db bun.IDB, event models.Event) error {
	if len(event.ProfileIDs) == 0 {
		return nil
	}
	slots := make([]models.EventProfile, len(event.ProfileIDs))
	for i, id := range event.ProfileIDs {
		slots[i] = models.EventProfile{EventID: event.ID, Position: i, ProfileID: id}
	}
	if _, err := db.NewInsert().Model(&slots).Exec(ctx); err != nil {
		return fmt.Errorf("insert participants: %w", err)
	}
	return nil
}

func (d *DB) loadParticipants(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	var slots []models.EventProfile
	err := d.Bun.NewSelect().
		Model(&slots).
		Where("event_id IN (?)", bun.In(ids)).
		Order("event_id", "position").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}

	byEvent := make(map[string][]string, len(events))
	for _, s := range slots {
		byEvent[s.EventID] = append(byEvent[s.EventID], s.ProfileID)
	}
	for i := range events {
		events[i].ProfileIDs = byEvent[events[i].ID]
		if events[i].ProfileIDs == nil {
			events[i].ProfileIDs = []string{}
		}
	}
	return nil
}

// ---------------- LOGS ----------------

func (d *DB) InsertLog(ctx context.Context, entry models.EventLog) error {
	return insertLogs(ctx, d.Bun, []models.EventLog{entry})
}

func (d *DB) InsertLogs(ctx context.Context, entries []models.EventLog) error {
	return insertLogs(ctx, d.Bun, entries)
}

func insertLogs(ctx context.Context, db bun.IDB, entries []models.EventLog) error {
	if len(entries) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&entries).Exec(ctx); err != nil {
		return fmt.Errorf("insert event logs: %w", err)
	}
	return nil
}

// GetLogsByEvent → entries of one event, newest first, batch order within one update
func (d *DB) GetLogsByEvent(ctx context.Context, eventID string) ([]models.EventLog, error) {
	entries := []models.EventLog{}
	err := d.Bun.NewSelect().
		Model(&entries).
		Where("event_id = ?", eventID).
		OrderExpr("? DESC", bun.Ident("timestamp")).
		Order("seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
