package postgres

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// TokenRepo implements TokenRepository using PostgreSQL.
type TokenRepo struct{ db *DB }

// NewTokenRepo constructs a revoked-token repository.
func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

// Revoke stores jti and drops entries whose tokens have expired anyway.
func (r *TokenRepo) Revoke(ctx context.Context, jti uuid.UUID, expiresAt time.Time) error {
	const ins = `
INSERT INTO revoked_tokens (jti, expires_at)
VALUES ($1, $2)
ON CONFLICT (jti) DO NOTHING`
	if _, err := r.db.Pool.Exec(ctx, ins, jti, expiresAt); err != nil {
		return translate(err, "revoked token")
	}
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < now()`); err != nil {
		return translate(err, "revoked token")
	}
	return nil
}

// IsRevoked reports whether jti is on the revocation list.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti=$1)`
	var revoked bool
	if err := r.db.Pool.QueryRow(ctx, q, jti).Scan(&revoked); err != nil {
		return false, translate(err, "revoked token")
	}
	return revoked, nil
}
