// Package repository contains data access logic for the conference and
// booking domain. This file covers conferences: creation, lookup, the
// row lock that serializes admission/promotion/cancellation for a
// single conference, and slot-count mutation.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/confhall/waitlist-service/internal/model"
)

// ConferenceRepo manages persistence for conferences and their topics.
type ConferenceRepo struct {
	db *sql.DB
}

// NewConferenceRepo constructs a ConferenceRepo with the given DB handle.
func NewConferenceRepo(db *sql.DB) *ConferenceRepo {
	return &ConferenceRepo{db: db}
}

// Create wraps CreateTx in its own transaction for callers that have
// no other repository operation to bundle with it.
func (r *ConferenceRepo) Create(ctx context.Context, c *model.Conference) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.CreateTx(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *ConferenceRepo) DB() *sql.DB {
	return r.db
}

// CreateTx inserts a new conference and its topic rows, then reselects
// to populate DB-default fields (created_at). The caller commits or
// rolls back.
func (r *ConferenceRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Conference) error {
	const q = `INSERT INTO conferences (name, location, start_ts, end_ts, total_slots, available_slots)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, c.Name, c.Location, c.StartTS, c.EndTS, c.TotalSlots, c.AvailableSlots)
	if err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicateConference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if err := r.insertTopicsTx(ctx, tx, c.ID, c.Topics); err != nil {
		return err
	}
	const sel = `SELECT id, name, location, start_ts, end_ts, total_slots, available_slots, created_at
                 FROM conferences WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, c.ID).Scan(
		&c.ID, &c.Name, &c.Location, &c.StartTS, &c.EndTS, &c.TotalSlots, &c.AvailableSlots, &c.CreatedAt,
	)
}

func (r *ConferenceRepo) insertTopicsTx(ctx context.Context, tx *sql.Tx, confID uint64, topics []string) error {
	if len(topics) == 0 {
		return nil
	}
	const q = `INSERT INTO conference_topics (conference_id, topic) VALUES (?, ?)`
	for _, t := range topics {
		if _, err := tx.ExecContext(ctx, q, confID, t); err != nil {
			return err
		}
	}
	return nil
}

// GetByName fetches a conference by its unique name, without a row
// lock. Used for read-only existence checks outside a mutation.
func (r *ConferenceRepo) GetByName(ctx context.Context, name string) (*model.Conference, error) {
	return r.getByName(ctx, r.db, name, false)
}

// GetByNameForUpdateTx fetches a conference by name with a row lock,
// serializing concurrent admission/promotion/cancellation decisions for
// that conference.
func (r *ConferenceRepo) GetByNameForUpdateTx(ctx context.Context, tx *sql.Tx, name string) (*model.Conference, error) {
	return r.getByName(ctx, tx, name, true)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *ConferenceRepo) getByName(ctx context.Context, q queryer, name string, forUpdate bool) (*model.Conference, error) {
	query := `SELECT id, name, location, start_ts, end_ts, total_slots, available_slots, created_at
              FROM conferences WHERE name = ?`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var c model.Conference
	err := q.QueryRowContext(ctx, query, name).Scan(
		&c.ID, &c.Name, &c.Location, &c.StartTS, &c.EndTS, &c.TotalSlots, &c.AvailableSlots, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConferenceNotFound
		}
		return nil, err
	}
	topics, err := r.listTopics(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	c.Topics = topics
	return &c, nil
}

// GetByID fetches a conference by id without a row lock, for read-only
// display paths that don't act on the result.
func (r *ConferenceRepo) GetByID(ctx context.Context, id uint64) (*model.Conference, error) {
	const q = `SELECT id, name, location, start_ts, end_ts, total_slots, available_slots, created_at
               FROM conferences WHERE id = ?`
	var c model.Conference
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.Location, &c.StartTS, &c.EndTS, &c.TotalSlots, &c.AvailableSlots, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConferenceNotFound
		}
		return nil, err
	}
	topics, err := r.listTopics(ctx, r.db, c.ID)
	if err != nil {
		return nil, err
	}
	c.Topics = topics
	return &c, nil
}

// GetByIDForUpdateTx fetches a conference by id with a row lock.
func (r *ConferenceRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Conference, error) {
	const q = `SELECT id, name, location, start_ts, end_ts, total_slots, available_slots, created_at
               FROM conferences WHERE id = ? FOR UPDATE`
	var c model.Conference
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.Location, &c.StartTS, &c.EndTS, &c.TotalSlots, &c.AvailableSlots, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConferenceNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConferenceRepo) listTopics(ctx context.Context, q queryer, confID uint64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT topic FROM conference_topics WHERE conference_id = ?`, confID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var topics []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// DecrAvailableSlotsTx decrements available_slots by one. The caller
// must already hold the row lock (via GetByNameForUpdateTx /
// GetByIDForUpdateTx in the same transaction).
func (r *ConferenceRepo) DecrAvailableSlotsTx(ctx context.Context, tx *sql.Tx, confID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE conferences SET available_slots = available_slots - 1 WHERE id = ? AND available_slots > 0`, confID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoChange
	}
	return nil
}

// IncrAvailableSlotsTx increments available_slots by one, capped at
// total_slots so a double-release can never overshoot capacity.
func (r *ConferenceRepo) IncrAvailableSlotsTx(ctx context.Context, tx *sql.Tx, confID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE conferences SET available_slots = LEAST(available_slots + 1, total_slots) WHERE id = ?`, confID)
	return err
}

// ListUpcomingStartingBefore returns conferences whose start_ts has
// passed but that may still have open WAITLISTED/CONFIRMATION_PENDING
// bookings, for use by a sweep scan (belt-and-suspenders against a
// missed bus timer).
func (r *ConferenceRepo) ListUpcomingStartingBefore(ctx context.Context) ([]model.Conference, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, location, start_ts, end_ts, total_slots, available_slots, created_at
         FROM conferences WHERE start_ts <= UTC_TIMESTAMP()
         AND EXISTS (
             SELECT 1 FROM bookings b WHERE b.conference_id = conferences.id
             AND b.status IN ('WAITLISTED','CONFIRMATION_PENDING')
         )`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Conference
	for rows.Next() {
		var c model.Conference
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.StartTS, &c.EndTS, &c.TotalSlots, &c.AvailableSlots, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func isDuplicateErr(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "1062")
}
