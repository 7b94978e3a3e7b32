package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/finance-tracker/internal/model"
)

// ErrProfileExists is returned when the user already has a profile.  It
// wraps ErrConflict.
var ErrProfileExists = fmt.Errorf("%w: profile already exists", ErrConflict)

const profileColumns = "id, user_id, name, mobile, avatar, address_line1, address_line2, city, state, country, pincode, created_at, updated_at"

// ProfileRepo manages the one-to-one profile attached to a user.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Create inserts p for p.UserID.  A second profile for the same user
// fails with ErrProfileExists; a missing user with ErrRelatedNotFound.
func (r *ProfileRepo) Create(ctx context.Context, p model.Profile) (*model.Profile, error) {
	ts := now()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO profiles (user_id, name, mobile, avatar, address_line1, address_line2, city, state, country, pincode, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		p.UserID, strings.TrimSpace(p.Name), nullable(p.Mobile), nullable(p.Avatar), nullable(p.AddressLine1), nullable(p.AddressLine2),
		nullable(p.City), nullable(p.State), nullable(p.Country), nullable(p.Pincode), ts, ts)
	if err != nil {
		err = translate(err)
		if errors.Is(err, ErrConflict) {
			return nil, ErrProfileExists
		}
		return nil, err
	}
	return r.GetByUserID(ctx, p.UserID)
}

// GetByUserID fetches the profile for userID.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = ? LIMIT 1", userID).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Mobile, &p.Avatar, &p.AddressLine1, &p.AddressLine2,
			&p.City, &p.State, &p.Country, &p.Pincode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// UpdateByUserID applies the non-nil fields of patch to userID's profile.
// Blank optional fields are cleared.
func (r *ProfileRepo) UpdateByUserID(ctx context.Context, userID uint64, patch model.ProfilePatch) (*model.Profile, error) {
	if _, err := r.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	var set setList
	for _, f := range []struct {
		col string
		v   *string
	}{
		{"name", patch.Name},
		{"mobile", patch.Mobile},
		{"avatar", patch.Avatar},
		{"address_line1", patch.AddressLine1},
		{"address_line2", patch.AddressLine2},
		{"city", patch.City},
		{"state", patch.State},
		{"country", patch.Country},
		{"pincode", patch.Pincode},
	} {
		switch {
		case f.v == nil:
		case f.col == "name":
			set.add(f.col, strings.TrimSpace(*f.v))
		default:
			set.add(f.col, nullable(f.v))
		}
	}
	if !set.empty() {
		clause, args := set.sql()
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE profiles SET "+clause+" WHERE user_id = ?", append(args, userID)...); err != nil {
			return nil, translate(err)
		}
	}
	return r.GetByUserID(ctx, userID)
}
