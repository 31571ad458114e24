package handler

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bankcards/internal/auth"
	"bankcards/internal/model"
	"bankcards/internal/service"
)

// CallerFromContext resolves the authenticated caller from the JWT the
// middleware stored on the request. Services receive this explicitly;
// nothing below the handler layer reads ambient session state.
func CallerFromContext(c echo.Context) (service.Caller, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return service.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return service.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return service.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid user id in token")
	}

	return service.Caller{
		UserID: userID,
		Admin:  claims.Role == model.RoleAdmin,
	}, nil
}
