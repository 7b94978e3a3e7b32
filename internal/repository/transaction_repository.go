package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/finance-tracker/internal/model"
)

// Listing bounds for ListByUser.
const (
	DefaultTake = 50
	MaxTake     = 100
)

const transactionSelect = `SELECT t.id, t.title, t.description, t.amount, t.date, t.user_id, t.category_id,
       t.created_at, t.updated_at,
       c.id, c.name, c.category_type, c.created_at, c.updated_at
FROM transactions t
JOIN categories c ON c.id = t.category_id`

// TransactionRepo manages transactions.  Every read and write is scoped
// by owner: a row belonging to someone else behaves exactly like a
// missing one.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

// Create inserts t and returns it with its category embedded.  A missing
// category yields ErrRelatedNotFound.
func (r *TransactionRepo) Create(ctx context.Context, t model.Transaction) (*model.Transaction, error) {
	ts := now()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO transactions (title, description, amount, date, user_id, category_id, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		strings.TrimSpace(t.Title), nullable(t.Description), t.Amount.String(), t.Date.UTC(), t.UserID, t.CategoryID, ts, ts)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByIDForUser(ctx, uint64(id), t.UserID)
}

// GetByIDForUser fetches one transaction owned by userID.
func (r *TransactionRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Transaction, error) {
	row := r.DB.QueryRowContext(ctx, transactionSelect+" WHERE t.id = ? AND t.user_id = ? LIMIT 1", id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// ListByUser returns f.UserID's transactions, newest first, with the
// category filter, inclusive date range and skip/take window applied.
func (r *TransactionRepo) ListByUser(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	var (
		where = []string{"t.user_id = ?"}
		args  = []any{f.UserID}
	)
	if f.CategoryID != 0 {
		where = append(where, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.DateFrom != nil {
		where = append(where, "t.date >= ?")
		args = append(args, f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		where = append(where, "t.date <= ?")
		args = append(args, f.DateTo.UTC())
	}
	take := f.Take
	if take <= 0 {
		take = DefaultTake
	}
	if take > MaxTake {
		take = MaxTake
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}
	args = append(args, take, skip)

	q := transactionSelect + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY t.date DESC, t.id DESC LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateForUser applies the non-nil fields of p to a transaction owned
// by userID.  Ownership and user_id itself never change.  A blank
// description clears it.
func (r *TransactionRepo) UpdateForUser(ctx context.Context, id, userID uint64, p model.TransactionPatch) (*model.Transaction, error) {
	if _, err := r.GetByIDForUser(ctx, id, userID); err != nil {
		return nil, err
	}
	var set setList
	if p.Title != nil {
		set.add("title", strings.TrimSpace(*p.Title))
	}
	if p.Description != nil {
		set.add("description", nullable(p.Description))
	}
	if p.Amount != nil {
		set.add("amount", p.Amount.String())
	}
	if p.Date != nil {
		set.add("date", p.Date.UTC())
	}
	if p.CategoryID != nil {
		set.add("category_id", *p.CategoryID)
	}
	if !set.empty() {
		clause, args := set.sql()
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE transactions SET "+clause+" WHERE id = ? AND user_id = ?", append(args, id, userID)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.GetByIDForUser(ctx, id, userID)
}

// DeleteForUser removes a transaction owned by userID.
func (r *TransactionRepo) DeleteForUser(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var (
		t model.Transaction
		c model.Category
	)
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.Amount, &t.Date, &t.UserID, &t.CategoryID,
		&t.CreatedAt, &t.UpdatedAt,
		&c.ID, &c.Name, &c.CategoryType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Category = &c
	return &t, nil
}
