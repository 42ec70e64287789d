package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/foodgram/internal/errs"
	"github.com/and161185/foodgram/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, username, first_name, last_name, password_hash, is_staff, created_at`

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (email, username, first_name, last_name, password_hash, is_staff)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff).
		Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("user with this email or username: %w", errs.ErrAlreadyExists)
	}
	return translate(err, "user")
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanOne(ctx, q, id)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanOne(ctx, q, email)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, translate(err, "user")
	}
	return &u, nil
}

// UpdatePassword replaces password_hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE users SET password_hash=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", errs.ErrNotFound)
	}
	return nil
}

// SetStaff updates is_staff by email.
func (r *UserRepo) SetStaff(ctx context.Context, email string, staff bool) error {
	const q = `UPDATE users SET is_staff=$2 WHERE email=$1`
	tag, err := r.db.Pool.Exec(ctx, q, email, staff)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user: %w", errs.ErrNotFound)
	}
	return nil
}

const profileSelect = `
SELECT u.id, u.email, u.username, u.first_name, u.last_name,
       EXISTS (SELECT 1 FROM follows f WHERE f.user_id=$1 AND f.author_id=u.id) AS is_subscribed
FROM users u`

// Profile selects a user with the viewer's subscription flag.
func (r *UserRepo) Profile(ctx context.Context, viewerID, id int64) (*model.Profile, error) {
	const q = profileSelect + `
WHERE u.id=$2`
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, viewerID, id))
	if err != nil {
		return nil, translate(err, "user")
	}
	return &p, nil
}

// List returns users ordered by username.
func (r *UserRepo) List(ctx context.Context, viewerID int64, page model.Page) ([]model.Profile, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = profileSelect + `
ORDER BY u.username
LIMIT $2 OFFSET $3`
	out, err := queryProfiles(ctx, r.db.Pool, q, viewerID, page.Limit, page.Offset())
	return out, total, err
}

// FollowRepo implements FollowRepository using PostgreSQL.
type FollowRepo struct{ db *DB }

// NewFollowRepo constructs a follow repository.
func NewFollowRepo(db *DB) *FollowRepo { return &FollowRepo{db: db} }

// Create inserts a follow edge. Duplicates and self-follow are rejected by constraints.
func (r *FollowRepo) Create(ctx context.Context, userID, authorID int64) error {
	const q = `INSERT INTO follows (user_id, author_id) VALUES ($1, $2)`
	_, err := r.db.Pool.Exec(ctx, q, userID, authorID)
	if err == nil {
		return nil
	}
	code, _ := pgCode(err)
	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("subscription: %w", errs.ErrAlreadyExists)
	case codeCheckViolation:
		return errs.ErrSelfFollow
	}
	return translate(err, "author")
}

// Delete removes a follow edge.
func (r *FollowRepo) Delete(ctx context.Context, userID, authorID int64) error {
	const q = `DELETE FROM follows WHERE user_id=$1 AND author_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, userID, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subscription: %w", errs.ErrNotFound)
	}
	return nil
}

// ListAuthors returns authors followed by userID, most recent subscription first.
func (r *FollowRepo) ListAuthors(ctx context.Context, userID int64, page model.Page) ([]model.Profile, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM follows WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	const q = `
SELECT u.id, u.email, u.username, u.first_name, u.last_name, true AS is_subscribed
FROM follows f JOIN users u ON u.id = f.author_id
WHERE f.user_id=$1
ORDER BY f.created_at DESC, f.id DESC
LIMIT $2 OFFSET $3`
	out, err := queryProfiles(ctx, r.db.Pool, q, userID, page.Limit, page.Offset())
	return out, total, err
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Username, &p.FirstName, &p.LastName, &p.IsSubscribed)
	return p, err
}

func queryProfiles(ctx context.Context, q querier, sql string, args ...any) ([]model.Profile, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
