package repository

import (
	"context"
	"crypto/subtle"
	"database/sql"
)

// TokenRepo persists the refresh-key hash on the users row.  A user has
// at most one active refresh session: storing a new hash replaces the
// previous one, clearing it revokes the session.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records keyHash as the user's current refresh key.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, keyHash string) error {
	return r.setHash(ctx, userID, keyHash)
}

// ValidateRefresh returns nil when keyHash matches the stored hash.  A
// missing user yields ErrNotFound; a cleared or different hash yields
// ErrSessionRevoked.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, userID uint64, keyHash string) error {
	var stored sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT refresh_key_hash FROM users WHERE id = ? LIMIT 1", userID).Scan(&stored)
	if err != nil {
		return translate(err)
	}
	if !stored.Valid || subtle.ConstantTimeCompare([]byte(stored.String), []byte(keyHash)) != 1 {
		return ErrSessionRevoked
	}
	return nil
}

// RevokeAllForUser clears the stored hash so no refresh token issued so
// far is accepted.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return r.setHash(ctx, userID, nil)
}

func (r *TokenRepo) setHash(ctx context.Context, userID uint64, hash any) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_key_hash = ? WHERE id = ?", hash, userID)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
