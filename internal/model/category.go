package model

import "time"

// CategoryType tags a category as money in or money out.
type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// Valid reports whether t is one of the known tags.
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category is a shared reference row that transactions point at.
type Category struct {
	ID           uint64       `json:"id"`
	Name         string       `json:"name"`
	CategoryType CategoryType `json:"categoryType"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// CategoryPatch carries a partial category update.
type CategoryPatch struct {
	Name         *string
	CategoryType *CategoryType
}
