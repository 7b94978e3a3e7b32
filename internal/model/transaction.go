package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry owned by one user.
// See Amount for how money is stored and rendered.
type Transaction struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Amount      Amount    `json:"amount"`
	Date        time.Time `json:"date"`
	UserID      uint64    `json:"userId"`
	CategoryID  uint64    `json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Category    *Category `json:"category,omitempty"`
}

// TransactionPatch carries a partial transaction update.
type TransactionPatch struct {
	Title       *string
	Description *string
	Amount      *Amount
	Date        *time.Time
	CategoryID  *uint64
}

// TransactionFilter narrows a per-user listing.  Zero values mean "no
// filter"; DateFrom and DateTo are inclusive.
type TransactionFilter struct {
	UserID     uint64
	CategoryID uint64
	DateFrom   *time.Time
	DateTo     *time.Time
	Skip       int
	Take       int
}

// SignedAmount returns the amount as income (positive) or expense
// (negative) according to the embedded category.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Category != nil && t.Category.CategoryType == CategoryExpense {
		return t.Amount.Neg()
	}
	return t.Amount.Decimal
}
