package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/confhall/waitlist-service/internal/model"
)

// BookingRepo manages persistence for bookings. All mutating methods
// are "Tx"-suffixed and must run inside a transaction that already
// holds the owning conference's row lock (see
// ConferenceRepo.GetByNameForUpdateTx / GetByIDForUpdateTx), so that
// the admission/promotion/cycling/cancellation decisions they support
// are serialized per conference.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) DB() *sql.DB {
	return r.db
}

// ActiveForUserAndConferenceForUpdateTx locks and returns the caller's
// non-canceled booking for a conference, if any. Used by the admission
// decider to enforce at-most-one-active-booking-per-user-per-conference
// (invariant I2) before inserting a new row.
func (r *BookingRepo) ActiveForUserAndConferenceForUpdateTx(ctx context.Context, tx *sql.Tx, userID string, confID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
               WHERE user_id = ? AND conference_id = ? AND status <> 'CANCELED'
               FOR UPDATE`
	b, err := scanBookingRow(tx.QueryRowContext(ctx, q, userID, confID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// CountPendingConfirmationsTx counts CONFIRMATION_PENDING bookings for
// a conference. Part of the admission decider's bypass-protection
// guard (§4.1): a direct confirm is only allowed when this is zero.
func (r *BookingRepo) CountPendingConfirmationsTx(ctx context.Context, tx *sql.Tx, confID uint64) (int, error) {
	return r.countByStatusTx(ctx, tx, confID, model.StatusConfirmationPending)
}

// CountWaitlistedTx counts WAITLISTED bookings for a conference. The
// other half of the bypass-protection guard.
func (r *BookingRepo) CountWaitlistedTx(ctx context.Context, tx *sql.Tx, confID uint64) (int, error) {
	return r.countByStatusTx(ctx, tx, confID, model.StatusWaitlisted)
}

func (r *BookingRepo) countByStatusTx(ctx context.Context, tx *sql.Tx, confID uint64, status model.BookingStatus) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE conference_id = ? AND status = ?`, confID, status).Scan(&n)
	return n, err
}

// CreateConfirmedTx inserts a new CONFIRMED booking.
func (r *BookingRepo) CreateConfirmedTx(ctx context.Context, tx *sql.Tx, confID uint64, userID string) (*model.Booking, error) {
	const q = `INSERT INTO bookings (conference_id, user_id, status, can_confirm) VALUES (?, ?, 'CONFIRMED', FALSE)`
	res, err := tx.ExecContext(ctx, q, confID, userID)
	if err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}
	return r.reselectTx(ctx, tx, res)
}

// CreateWaitlistedTx inserts a new WAITLISTED booking at the tail of
// the FIFO (MAX(waitlist_position)+1), grounded on the reference's
// create_waitlist_booking_internal.
func (r *BookingRepo) CreateWaitlistedTx(ctx context.Context, tx *sql.Tx, confID uint64, userID string) (*model.Booking, error) {
	pos, err := r.nextWaitlistPositionTx(ctx, tx, confID)
	if err != nil {
		return nil, err
	}
	const q = `INSERT INTO bookings (conference_id, user_id, status, waitlist_position, can_confirm)
               VALUES (?, ?, 'WAITLISTED', ?, FALSE)`
	res, err := tx.ExecContext(ctx, q, confID, userID, pos)
	if err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}
	return r.reselectTx(ctx, tx, res)
}

func (r *BookingRepo) nextWaitlistPositionTx(ctx context.Context, tx *sql.Tx, confID uint64) (int, error) {
	var maxPos sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(waitlist_position) FROM bookings WHERE conference_id = ? AND status = 'WAITLISTED'`, confID).Scan(&maxPos)
	if err != nil {
		return 0, err
	}
	if !maxPos.Valid {
		return 1, nil
	}
	return int(maxPos.Int64) + 1, nil
}

func (r *BookingRepo) reselectTx(ctx context.Context, tx *sql.Tx, res sql.Result) (*model.Booking, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.getByIDTx(ctx, tx, uint64(id), false)
}

// GetByID fetches a booking without a row lock.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBookingRow(r.db.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// GetByIDForUpdateTx fetches a booking with a row lock.
func (r *BookingRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	return r.getByIDTx(ctx, tx, id, true)
}

func (r *BookingRepo) getByIDTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (*model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	if forUpdate {
		q += " FOR UPDATE"
	}
	b, err := scanBookingRow(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

// NextWaitlistedForUpdateTx locks and returns the FIFO head of a
// conference's waitlist (lowest waitlist_position), or nil if empty.
// Grounded on queue.rs::promote_next_waitlisted_person's ordered
// select.
func (r *BookingRepo) NextWaitlistedForUpdateTx(ctx context.Context, tx *sql.Tx, confID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
               WHERE conference_id = ? AND status = 'WAITLISTED'
               ORDER BY waitlist_position ASC LIMIT 1 FOR UPDATE`
	b, err := scanBookingRow(tx.QueryRowContext(ctx, q, confID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// PromoteToConfirmationPendingTx flips a WAITLISTED booking to
// CONFIRMATION_PENDING with the given deadline, clearing its waitlist
// position (it is no longer part of the FIFO ordering).
func (r *BookingRepo) PromoteToConfirmationPendingTx(ctx context.Context, tx *sql.Tx, bookingID uint64, deadline time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'CONFIRMATION_PENDING', confirmation_deadline = ?, can_confirm = TRUE, waitlist_position = NULL
         WHERE id = ? AND status = 'WAITLISTED'`, deadline, bookingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoChange
	}
	return nil
}

// CycleToWaitlistTailTx moves an expired CONFIRMATION_PENDING booking
// back to WAITLISTED at the new tail position, grounded on
// queue.rs::move_booking_to_waitlist_end. It is a no-op (ErrNoChange)
// if the booking is no longer CONFIRMATION_PENDING — the idempotence
// guard required by the at-least-once delivery model.
func (r *BookingRepo) CycleToWaitlistTailTx(ctx context.Context, tx *sql.Tx, bookingID uint64, confID uint64) error {
	pos, err := r.nextWaitlistPositionTx(ctx, tx, confID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'WAITLISTED', waitlist_position = ?, can_confirm = FALSE, confirmation_deadline = NULL
         WHERE id = ? AND status = 'CONFIRMATION_PENDING'`, pos, bookingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoChange
	}
	return nil
}

// ConfirmTx flips a CONFIRMATION_PENDING booking to CONFIRMED. It does
// not check ownership; the caller does that before calling it. available_slots is not touched here: the seat was already
// reserved against capacity at promotion time (see DESIGN.md's Open
// Question decision).
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'CONFIRMED', can_confirm = FALSE, confirmation_deadline = NULL
         WHERE id = ? AND status = 'CONFIRMATION_PENDING'`, bookingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoChange
	}
	return nil
}

// CancelTx marks a booking CANCELED, clearing waitlist/offer fields.
// An already-canceled row is left untouched and a second cancel is
// reported with ErrNoChange rather than silently succeeding.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'CANCELED', canceled_at = UTC_TIMESTAMP(), can_confirm = FALSE,
         confirmation_deadline = NULL, waitlist_position = NULL
         WHERE id = ? AND status <> 'CANCELED'`, bookingID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoChange
	}
	return nil
}

// SweepConferenceStartTx cancels every WAITLISTED and
// CONFIRMATION_PENDING booking for a conference, for the start-time
// sweeper (§4.5). Confirmed bookings are left untouched.
func (r *BookingRepo) SweepConferenceStartTx(ctx context.Context, tx *sql.Tx, confID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'CANCELED', canceled_at = UTC_TIMESTAMP(), can_confirm = FALSE,
         confirmation_deadline = NULL, waitlist_position = NULL
         WHERE conference_id = ? AND status IN ('WAITLISTED','CONFIRMATION_PENDING')`, confID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListOverlappingForUserTx returns the caller's CONFIRMED or
// CONFIRMATION_PENDING bookings whose conference overlaps the
// half-open interval [start, end), excluding the given conference.
// WAITLISTED bookings hold no slot and never block a new booking, by
// design. Grounded on actions.rs::check_user_has_overlapping_booking,
// narrowed to the slot-holding statuses per the booking-eligibility
// rules, with the SQL predicate shape of the teacher's FindOverlapping.
func (r *BookingRepo) ListOverlappingForUserTx(ctx context.Context, tx *sql.Tx, userID string, start, end time.Time, excludeConfID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings b
               JOIN conferences c ON c.id = b.conference_id
               WHERE b.user_id = ? AND b.status IN ('CONFIRMED','CONFIRMATION_PENDING') AND b.conference_id <> ?
               AND NOT (c.end_ts <= ? OR c.start_ts >= ?)
               FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, userID, excludeConfID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingRows(rows)
}

// ListWaitlistedOverlappingForUserTx is like ListOverlappingForUserTx
// but restricted to WAITLISTED bookings, used to cancel a user's other
// waitlist entries once one of their bookings has been confirmed
// (actions.rs::remove_from_overlapping_waitlists).
func (r *BookingRepo) ListWaitlistedOverlappingForUserTx(ctx context.Context, tx *sql.Tx, userID string, start, end time.Time, excludeConfID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings b
               JOIN conferences c ON c.id = b.conference_id
               WHERE b.user_id = ? AND b.status = 'WAITLISTED' AND b.conference_id <> ?
               AND NOT (c.end_ts <= ? OR c.start_ts >= ?)
               FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, userID, excludeConfID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookingRows(rows)
}

// BookingWithUser pairs a booking with the name of the conference it
// belongs to, for the conference-bookings listing endpoint.
type BookingWithUser struct {
	model.Booking
	ConferenceName string
}

// ListByConferenceName returns every booking for a conference, joined
// with the conference name. Grounded on main.rs::get_conference_bookings.
func (r *BookingRepo) ListByConferenceName(ctx context.Context, confName string) ([]BookingWithUser, error) {
	const q = `SELECT b.id, b.conference_id, b.user_id, b.status, b.created_at, b.confirmation_deadline,
                      b.canceled_at, b.can_confirm, b.waitlist_position, c.name
               FROM bookings b
               JOIN conferences c ON c.id = b.conference_id
               WHERE c.name = ?
               ORDER BY b.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, confName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookingWithUser
	for rows.Next() {
		var bu BookingWithUser
		if err := rows.Scan(&bu.ID, &bu.ConferenceID, &bu.UserID, &bu.Status, &bu.CreatedAt,
			&bu.ConfirmationDeadline, &bu.CanceledAt, &bu.CanConfirm, &bu.WaitlistPosition, &bu.ConferenceName); err != nil {
			return nil, err
		}
		out = append(out, bu)
	}
	return out, rows.Err()
}

const bookingCols = `id, conference_id, user_id, status, created_at, confirmation_deadline, canceled_at, can_confirm, waitlist_position`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingRow(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.ConferenceID, &b.UserID, &b.Status, &b.CreatedAt,
		&b.ConfirmationDeadline, &b.CanceledAt, &b.CanConfirm, &b.WaitlistPosition)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookingRows(rows *sql.Rows) ([]model.Booking, error) {
	var out []model.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
