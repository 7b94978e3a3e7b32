package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/model"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/utils"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

// UserHandler serves /api/users/:id.  The router only lets callers reach
// their own id.
type UserHandler struct {
	Users      UserStore
	Profiles   ProfileStore
	BcryptCost int
	Audit      audit.Publisher
}

func NewUserHandler(u UserStore, p ProfileStore, bcryptCost int, pub audit.Publisher) *UserHandler {
	return &UserHandler{Users: u, Profiles: p, BcryptCost: bcryptCost, Audit: pub}
}

// Get returns the user with the profile embedded when one exists.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return userErr(err, id)
	}
	p, err := h.Profiles.GetByUserID(ctx, id)
	switch {
	case err == nil:
		u.Profile = p
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return respond(c, http.StatusOK, "", u)
}

// Update changes username, email or password.  A new password is hashed
// before it is stored.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateUserReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}

	patch := model.UserPatch{Username: req.Username, Email: req.Email}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password, h.BcryptCost)
		if err != nil {
			return err
		}
		patch.PasswordHash = &hash
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Update(ctx, id, patch)
	if err != nil {
		return userErr(err, id)
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionUpdate, audit.EntityUser, id, id))
	return respond(c, http.StatusOK, "User updated successfully", u)
}

// Delete removes the user together with their profile and transactions.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		return userErr(err, id)
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionDelete, audit.EntityUser, id, id))
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

func userErr(err error, id uint64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFoundf("User with ID %d not found", id)
	case errors.Is(err, repository.ErrEmailExists):
		return conflict("A record with this email already exists")
	}
	return err
}
