package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/audit"
	"github.com/iliyamo/finance-tracker/internal/log"
	"github.com/iliyamo/finance-tracker/internal/middleware"
	"github.com/iliyamo/finance-tracker/internal/model"
	"github.com/iliyamo/finance-tracker/internal/repository"
	"github.com/iliyamo/finance-tracker/internal/utils"
	"github.com/iliyamo/finance-tracker/internal/validation"
)

// AuthHandler bundles dependencies for registration and session endpoints.
type AuthHandler struct {
	Users      UserStore
	Tokens     TokenStore
	JWT        utils.TokenService
	BcryptCost int
	Audit      audit.Publisher
}

func NewAuthHandler(u UserStore, t TokenStore, jwt utils.TokenService, bcryptCost int, pub audit.Publisher) *AuthHandler {
	return &AuthHandler{Users: u, Tokens: t, JWT: jwt, BcryptCost: bcryptCost, Audit: pub}
}

// ----- responses -----

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type sessionResp struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates a user and returns a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return conflict("A record with this email already exists")
		}
		return err
	}
	access, refresh, err := h.issueSession(c, u)
	if err != nil {
		return err
	}

	publish(c, h.Audit, audit.NewEvent(audit.ActionCreate, audit.EntityUser, u.ID, u.ID))
	return respond(c, http.StatusCreated, "User registered successfully", sessionResp{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Login verifies credentials and returns a new session.  The new refresh
// key replaces any previous one.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized("Invalid email or password")
		}
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return unauthorized("Invalid email or password")
	}
	if utils.NeedsRehash(u.PasswordHash, h.BcryptCost) {
		h.rehash(c, u.ID, req.Password)
	}

	access, refresh, err := h.issueSession(c, u)
	if err != nil {
		return err
	}

	publish(c, h.Audit, audit.NewEvent(audit.ActionLogin, audit.EntityUser, u.ID, u.ID))
	return respond(c, http.StatusOK, "Login successful", sessionResp{
		User:         userPart{ID: u.ID, Username: u.Username, Email: u.Email},
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Refresh exchanges a refresh token for a new access token.  The refresh
// token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := validation.Bind(c, &req); err != nil {
		return err
	}

	claims, err := h.JWT.Verify(req.RefreshToken, utils.KindRefresh)
	if err != nil || claims.RefreshKey == "" {
		return forbidden("Invalid or expired refresh token")
	}
	uid, _ := claims.UserID()

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return forbidden("User not found")
		}
		return err
	}
	if err := h.Tokens.ValidateRefresh(ctx, u.ID, utils.HashOpaqueKey(claims.RefreshKey)); err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionRevoked):
			return forbidden("Refresh session revoked")
		case errors.Is(err, repository.ErrNotFound):
			return forbidden("User not found")
		}
		return err
	}

	access, err := h.JWT.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Token refreshed successfully", echo.Map{"accessToken": access.Raw})
}

// Logout clears the caller's refresh key so no refresh token issued so
// far is accepted.  Access tokens stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthorized("Unauthorized")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized("Unauthorized")
		}
		return err
	}

	publish(c, h.Audit, audit.NewEvent(audit.ActionLogout, audit.EntityUser, uid, uid))
	return respond(c, http.StatusOK, "Logout successful", nil)
}

// rehash upgrades a stored hash to the configured cost.  Failure only
// costs a log line; the login itself already succeeded.
func (h *AuthHandler) rehash(c echo.Context, id uint64, plain string) {
	hash, err := utils.HashPassword(plain, h.BcryptCost)
	if err == nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		_, err = h.Users.Update(ctx, id, model.UserPatch{PasswordHash: &hash})
	}
	if err != nil {
		log.FromContext(c.Request().Context()).WithComponent(log.ComponentAuth).Warn("password rehash failed",
			log.FieldUserID, id,
			log.FieldError, err)
	}
}

// issueSession signs both tokens and stores the hash of the new refresh
// key.
func (h *AuthHandler) issueSession(c echo.Context, u *model.User) (access, refresh string, err error) {
	key, err := utils.IssueOpaqueKey()
	if err != nil {
		return "", "", err
	}
	at, err := h.JWT.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return "", "", err
	}
	rt, err := h.JWT.IssueRefreshToken(u.ID, u.Email, key)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashOpaqueKey(key)); err != nil {
		return "", "", err
	}
	return at.Raw, rt.Raw, nil
}
