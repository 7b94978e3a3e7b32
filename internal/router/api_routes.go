package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/finance-tracker/internal/middleware"
	"github.com/iliyamo/finance-tracker/internal/utils"
)

// RegisterAPI registers the protected resource routes under /api.  Paths
// that name a user are additionally restricted to that user.  The token
// check is attached per route rather than to the group so unknown /api
// paths still answer 404.
func RegisterAPI(e *echo.Echo, h Handlers, tokens utils.TokenService) {
	api := e.Group("/api")
	auth := middleware.JWTAuth(tokens)

	self := middleware.RequireSelf("id")
	api.GET("/users/:id", h.Users.Get, auth, self)
	api.PUT("/users/:id", h.Users.Update, auth, self)
	api.DELETE("/users/:id", h.Users.Delete, auth, self)

	selfUser := middleware.RequireSelf("userId")
	api.GET("/profile/user/:userId", h.Profiles.Get, auth, selfUser)
	api.POST("/profile/user/:userId", h.Profiles.Create, auth, selfUser)
	api.PUT("/profile/user/:userId", h.Profiles.Update, auth, selfUser)

	api.GET("/categories", h.Categories.List, auth)
	api.POST("/categories", h.Categories.Create, auth)
	api.GET("/categories/:id", h.Categories.Get, auth)
	api.PUT("/categories/:id", h.Categories.Update, auth)
	api.DELETE("/categories/:id", h.Categories.Delete, auth)

	api.POST("/transactions", h.Transactions.Create, auth)
	api.GET("/transactions/user/:userId", h.Transactions.ListByUser, auth, selfUser)
	api.GET("/transactions/:id", h.Transactions.Get, auth)
	api.PUT("/transactions/:id", h.Transactions.Update, auth)
	api.DELETE("/transactions/:id", h.Transactions.Delete, auth)
}
