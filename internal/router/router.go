// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garden-directory/internal/handler"
)

// RegisterRoutes registers routes that are not part of the versioned
// API surface. Currently it exposes only the health check used by
// load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers registers the account endpoints under /v1: register,
// list, fetch and password-check login. None of these require a
// session; the directory has no token auth.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler) {
	g := e.Group("/v1")
	g.POST("/users", u.Register)
	g.GET("/users", u.List)
	g.GET("/users/:id", u.GetByID)
	g.POST("/login", u.Login)
}

// RegisterGardens registers garden CRUD and tag listing under /v1.
func RegisterGardens(e *echo.Echo, gh *handler.GardenHandler) {
	g := e.Group("/v1")
	g.POST("/gardens", gh.Create)
	g.GET("/gardens", gh.List)
	g.GET("/gardens/:id", gh.GetByID)
	g.GET("/gardens/:id/tags", gh.ListTags)
}

// RegisterMemberships registers join/leave and membership listings.
// Joining posts to the garden itself with the user in the query
// string, mirroring the original surface of the directory.
func RegisterMemberships(e *echo.Echo, mh *handler.MembershipHandler) {
	g := e.Group("/v1")
	g.POST("/gardens/:id", mh.Join)
	g.DELETE("/gardens/:id/members", mh.Leave)
	g.GET("/gardens/:id/members", mh.Members)
	g.GET("/users/:id/gardens", mh.GardensForUser)
}
