package handler

import (
	"context"

	"github.com/iliyamo/finance-tracker/internal/model"
)

// The interfaces below are the slices of the repositories each handler
// uses.  The *Repo types in internal/repository satisfy them.

type UserStore interface {
	Create(ctx context.Context, username, email, password string, cost int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Update(ctx context.Context, id uint64, p model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id uint64) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, keyHash string) error
	ValidateRefresh(ctx context.Context, userID uint64, keyHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

type ProfileStore interface {
	Create(ctx context.Context, p model.Profile) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error)
	UpdateByUserID(ctx context.Context, userID uint64, p model.ProfilePatch) (*model.Profile, error)
}

type CategoryStore interface {
	Create(ctx context.Context, name string, typ model.CategoryType) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id uint64) (*model.Category, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Update(ctx context.Context, id uint64, p model.CategoryPatch) (*model.Category, error)
	Delete(ctx context.Context, id uint64) error
}

type TransactionStore interface {
	Create(ctx context.Context, t model.Transaction) (*model.Transaction, error)
	GetByIDForUser(ctx context.Context, id, userID uint64) (*model.Transaction, error)
	ListByUser(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	UpdateForUser(ctx context.Context, id, userID uint64, p model.TransactionPatch) (*model.Transaction, error)
	DeleteForUser(ctx context.Context, id, userID uint64) error
}
