package model

import "time"

// User represents an application user record as stored in the
// `users` table.  PasswordHash and RefreshKeyHash never leave the
// process: both are excluded from JSON.
//
// Fields:
//
//	ID             – primary key identifier of the user.
//	Username       – display name chosen at registration.
//	Email          – unique email address.
//	PasswordHash   – bcrypt hashed password.
//	RefreshKeyHash – SHA-256 of the current refresh key; nil once logged out.
//	Profile        – optional one-to-one profile, loaded on demand.
type User struct {
	ID             uint64    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	RefreshKeyHash *string   `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Profile        *Profile  `json:"profile,omitempty"`
}

// UserPatch lists the user fields an update may change.  Nil fields are
// left untouched.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
}
