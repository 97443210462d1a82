package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/space-reservation/internal/handler"    // handlers for every endpoint
	"github.com/iliyamo/space-reservation/internal/middleware" // JWT, role, rate limit and cache middleware
	"github.com/iliyamo/space-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication: the
// liveness probe and, when db is not nil, the readiness probe.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers the session endpoints under /v1/auth.  None of them
// require an access token; logout accepts one optionally.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)
}

// Manager bundles the handlers mounted under /v1/managers.
type Manager struct {
	Members      *handler.MemberHandler
	Presets      *handler.PresetHandler
	Maps         *handler.MapHandler
	Spaces       *handler.SpaceHandler
	Reservations *handler.ReservationHandler
}

// RegisterManager registers MANAGER-scoped endpoints.  All routes require a
// valid JWT and the MANAGER role.  Writes bump the guest cache generation
// of the map they touch so guests never read a stale listing past a write.
func RegisterManager(e *echo.Echo, h Manager, jwtSecret string, invalidate echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/managers",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager),
	)

	// ---- Account ----
	g.GET("/me", h.Members.Me)
	g.PUT("/me", h.Members.UpdateMe)
	g.DELETE("/me", h.Members.DeleteMe)

	// ---- Presets ----
	g.POST("/presets", h.Presets.Create)
	g.GET("/presets", h.Presets.List)
	g.DELETE("/presets/:presetId", h.Presets.Delete)

	// ---- Maps ----
	g.POST("/maps", h.Maps.Create)
	g.GET("/maps", h.Maps.List)
	g.GET("/maps/:mapId", h.Maps.Get)
	g.PUT("/maps/:mapId", h.Maps.Update, invalidate)
	g.DELETE("/maps/:mapId", h.Maps.Delete, invalidate)

	// ---- Spaces ----
	g.POST("/maps/:mapId/spaces", h.Spaces.Create, invalidate)
	g.GET("/maps/:mapId/spaces", h.Spaces.List)
	g.GET("/maps/:mapId/spaces/:spaceId", h.Spaces.Get)
	g.PUT("/maps/:mapId/spaces/:spaceId", h.Spaces.Update, invalidate)
	g.DELETE("/maps/:mapId/spaces/:spaceId", h.Spaces.Delete, invalidate)

	// ---- Reservations ----
	r := g.Group("/maps/:mapId/spaces/:spaceId/reservations")
	r.GET("", h.Reservations.ManagerList)
	r.POST("", h.Reservations.ManagerCreate, invalidate)
	r.GET("/:reservationId", h.Reservations.ManagerGet)
	r.PUT("/:reservationId", h.Reservations.ManagerUpdate, invalidate)
	r.DELETE("/:reservationId", h.Reservations.ManagerDelete, invalidate)
}

// Guest bundles the handlers and middleware of the anonymous surface.
type Guest struct {
	Maps         *handler.MapHandler
	Spaces       *handler.SpaceHandler
	Reservations *handler.ReservationHandler

	RateLimit  echo.MiddlewareFunc // applied to every guest route
	Cache      echo.MiddlewareFunc // applied to reads
	Invalidate echo.MiddlewareFunc // applied to writes
}

// RegisterGuest registers the unauthenticated endpoints under /v1/guests.
// Guests reach a map through its sharing id; reservations they create are
// guarded by a four digit password instead of an account.
func RegisterGuest(e *echo.Echo, h Guest) {
	g := e.Group("/v1/guests", h.RateLimit)

	g.GET("/maps", h.Maps.Shared, h.Cache)
	g.GET("/maps/:mapId/spaces", h.Spaces.ListPublic, h.Cache)

	r := g.Group("/maps/:mapId/spaces/:spaceId/reservations")
	r.GET("", h.Reservations.GuestList, h.Cache)
	r.POST("", h.Reservations.GuestCreate, h.Invalidate)
	// POST so the password travels in the body; never cached
	r.POST("/:reservationId", h.Reservations.GuestRead)
	r.PUT("/:reservationId", h.Reservations.GuestUpdate, h.Invalidate)
	r.DELETE("/:reservationId", h.Reservations.GuestDelete, h.Invalidate)
}
