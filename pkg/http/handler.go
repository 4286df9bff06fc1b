package http

import "github.com/labstack/echo/v4"

// Handler mounts a route group on the server. The engine control surface is
// the only implementation; it registers under /api and keeps all gating
// logic out of the handlers.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
