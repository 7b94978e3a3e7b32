package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/finance-tracker/internal/model"
	"github.com/iliyamo/finance-tracker/internal/utils"
)

// ErrEmailExists is returned when the email is already registered.  It
// wraps ErrConflict.
var ErrEmailExists = fmt.Errorf("%w: email already exists", ErrConflict)

const userColumns = "id, username, email, password_hash, refresh_key_hash, created_at, updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NormalizeEmail lowercases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create hashes password with cost, inserts the user and returns the
// stored row.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (*model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	ts := now()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?,?,?,?,?)",
		strings.TrimSpace(username), NormalizeEmail(email), hash, ts, ts)
	if err != nil {
		return nil, emailConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email))
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// Update applies the non-nil fields of p.  An empty patch still reports
// ErrNotFound for a missing user.
func (r *UserRepo) Update(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	var set setList
	if p.Username != nil {
		set.add("username", strings.TrimSpace(*p.Username))
	}
	if p.Email != nil {
		set.add("email", NormalizeEmail(*p.Email))
	}
	if p.PasswordHash != nil {
		set.add("password_hash", *p.PasswordHash)
	}
	if !set.empty() {
		clause, args := set.sql()
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+clause+" WHERE id = ?", append(args, id)...); err != nil {
			return nil, emailConflict(err)
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user; profile and transactions cascade.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return translateDelete(err)
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

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RefreshKeyHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// emailConflict narrows a uniqueness failure on users to ErrEmailExists,
// the only unique column on the table.
func emailConflict(err error) error {
	err = translate(err)
	if errors.Is(err, ErrConflict) {
		return ErrEmailExists
	}
	return err
}
