package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ZaspDragon/timeclock-api/internal/core/ports"
)

// ctxIdentity extracts the session identity injected by the Auth middleware
// and performs a fast-fail check before any service call: a token without a
// user id, name, and company is structurally valid but operationally
// unusable, so reject with 401 before touching the store.
func ctxIdentity(c echo.Context) (ports.Identity, error) {
	id := ports.Identity{}
	id.UserID, _ = c.Get("user_id").(string)
	id.Name, _ = c.Get("name").(string)
	id.Company, _ = c.Get("company").(string)
	id.Role, _ = c.Get("role").(string)

	if id.Role == "" {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	if id.UserID == "" || id.Name == "" || id.Company == "" {
		return ports.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}
	return id, nil
}
