package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// TokenVerifier is the part of utils.TokenService JWTAuth needs.
type TokenVerifier interface {
	Verify(raw string, kind utils.TokenKind) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the caller's id (uint64) and email on the context.  A missing
// header is 401; an expired or otherwise bad token is 403.
func JWTAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			claims, err := tokens.Verify(raw, utils.KindAccess)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusForbidden, "Access token expired")
				}
				return echo.NewHTTPError(http.StatusForbidden, "Invalid access token")
			}
			id, err := claims.UserID()
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "Invalid access token")
			}

			c.Set(ContextUserID, id)
			c.Set(ContextEmail, claims.Email)
			return next(c)
		}
	}
}
