package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bankcards/internal/auth"
	"bankcards/internal/config"
	"bankcards/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	cardHandler *handler.CardHandler,
	blockRequestHandler *handler.BlockRequestHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	admin := secured.Group("", AdminOnly)

	// User administration (admin)
	admin.POST("/users", userHandler.CreateUser)
	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:id", userHandler.GetUser)
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	// Card routes
	admin.POST("/cards", cardHandler.Create)
	admin.GET("/cards", cardHandler.ListAll)
	admin.GET("/cards/status/:status", cardHandler.ListByStatus)
	admin.GET("/cards/expiring-before/:date", cardHandler.ListExpiringBefore)
	admin.PUT("/cards/:id/block", cardHandler.Block)
	admin.PUT("/cards/:id/activate", cardHandler.Activate)
	admin.DELETE("/cards/:id", cardHandler.Delete)
	secured.GET("/cards/:id", cardHandler.Get)
	secured.GET("/cards/:id/transfers", cardHandler.ListTransfers)
	secured.GET("/cards/user/:userId", cardHandler.ListByOwner)
	secured.POST("/cards/transfer", cardHandler.Transfer)

	// Block request workflow
	secured.POST("/block-requests/:cardId", blockRequestHandler.Create)
	admin.PUT("/block-requests/:id/approve", blockRequestHandler.Approve)
	admin.PUT("/block-requests/:id/reject", blockRequestHandler.Reject)
	admin.GET("/block-requests/pending", blockRequestHandler.ListPending)
}

// AdminOnly rejects callers without the admin role.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, err := handler.CallerFromContext(c)
		if err != nil {
			return err
		}
		if !caller.Admin {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
