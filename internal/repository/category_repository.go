package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/finance-tracker/internal/model"
)

const categoryColumns = "id, name, category_type, created_at, updated_at"

// CategoryRepo manages the shared category list.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// Create inserts a category.  An empty type defaults to EXPENSE.
func (r *CategoryRepo) Create(ctx context.Context, name string, typ model.CategoryType) (*model.Category, error) {
	if typ == "" {
		typ = model.CategoryExpense
	}
	ts := now()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO categories (name, category_type, created_at, updated_at) VALUES (?,?,?,?)",
		strings.TrimSpace(name), string(typ), ts, ts)
	if err != nil {
		return nil, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// List returns every category ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CategoryType, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByID fetches one category.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	var c model.Category
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? LIMIT 1", id).
		Scan(&c.ID, &c.Name, &c.CategoryType, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Exists reports whether the category id is present.
func (r *CategoryRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM categories WHERE id = ? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, translate(err)
	}
	return true, nil
}

// Update applies the non-nil fields of p.
func (r *CategoryRepo) Update(ctx context.Context, id uint64, p model.CategoryPatch) (*model.Category, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	var set setList
	if p.Name != nil {
		set.add("name", strings.TrimSpace(*p.Name))
	}
	if p.CategoryType != nil {
		set.add("category_type", string(*p.CategoryType))
	}
	if !set.empty() {
		clause, args := set.sql()
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE categories SET "+clause+" WHERE id = ?", append(args, id)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a category.  It fails with ErrReferenced while any
// transaction still points at it.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
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
