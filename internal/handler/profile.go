package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

// ProfileHandler serves /api/profile/user/:userId.
type ProfileHandler struct {
	Profiles ProfileStore
	Audit    audit.Publisher
}

func NewProfileHandler(p ProfileStore, pub audit.Publisher) *ProfileHandler {
	return &ProfileHandler{Profiles: p, Audit: pub}
}

func (h *ProfileHandler) Get(c echo.Context) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Profiles.GetByUserID(ctx, uid)
	if err != nil {
		return profileErr(err, uid)
	}
	return respond(c, http.StatusOK, "", p)
}

// Create attaches a profile to the user.  A userId in the body, when
// sent, must name the same user as the path.
func (h *ProfileHandler) Create(c echo.Context) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	var req createProfileReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}
	if req.UserID != nil && *req.UserID != uid {
		return validation.Errors{{Field: "userId", Message: "must match the user in the path"}}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Profiles.Create(ctx, req.profile(uid))
	if err != nil {
		return profileErr(err, uid)
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionCreate, audit.EntityProfile, p.ID, uid))
	return respond(c, http.StatusCreated, "Profile created successfully", p)
}

func (h *ProfileHandler) Update(c echo.Context) error {
	uid, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	var req updateProfileReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Profiles.UpdateByUserID(ctx, uid, req.patch())
	if err != nil {
		return profileErr(err, uid)
	}
	publish(c, h.Audit, audit.NewEvent(audit.ActionUpdate, audit.EntityProfile, p.ID, uid))
	return respond(c, http.StatusOK, "Profile updated successfully", p)
}

func profileErr(err error, uid uint64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFoundf("Profile for user ID %d not found", uid)
	case errors.Is(err, repository.ErrProfileExists):
		return conflict(fmt.Sprintf("Profile for user ID %d already exists", uid))
	case errors.Is(err, repository.ErrRelatedNotFound):
		return notFoundf("User with ID %d not found", uid)
	}
	return err
}
