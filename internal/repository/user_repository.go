package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/confhall/waitlist-service/internal/model"
)

// UserRepo manages persistence for users and their declared topics.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo constructs a UserRepo with the given DB handle.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user and its topic rows inside a single
// transaction, then reselects to populate created_at.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
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

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (user_id) VALUES (?)`, u.UserID); err != nil {
		return err
	}
	for _, t := range u.Topics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO user_topics (user_id, topic) VALUES (?, ?)`, u.UserID, t); err != nil {
			return err
		}
	}
	const sel = `SELECT created_at FROM users WHERE user_id = ?`
	if err := tx.QueryRowContext(ctx, sel, u.UserID).Scan(&u.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a user by id along with its declared topics.
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	var u model.User
	u.UserID = userID
	err := r.db.QueryRowContext(ctx, `SELECT user_id, created_at FROM users WHERE user_id = ?`, userID).
		Scan(&u.UserID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT topic FROM user_topics WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		u.Topics = append(u.Topics, t)
	}
	return &u, rows.Err()
}

// Exists reports whether a user row exists, used by the admission
// decider's existence check without needing the full topic list.
func (r *UserRepo) Exists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE user_id = ? LIMIT 1`, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
