package model

import "time"

// Profile holds contact and address details attached to exactly one user.
type Profile struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"userId"`
	Name         string    `json:"name"`
	Mobile       *string   `json:"mobile"`
	Avatar       *string   `json:"avatar"`
	AddressLine1 *string   `json:"addressLine1"`
	AddressLine2 *string   `json:"addressLine2"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	Country      *string   `json:"country"`
	Pincode      *string   `json:"pincode"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfilePatch carries a partial profile update.
type ProfilePatch struct {
	Name         *string
	Mobile       *string
	Avatar       *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	Country      *string
	Pincode      *string
}
