package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"bankcards/internal/auth"
	"bankcards/internal/cache"
	"bankcards/internal/cardnum"
	"bankcards/internal/config"
	"bankcards/internal/db"
	"bankcards/internal/handler"
	"bankcards/internal/model"
	"bankcards/internal/repository"
	"bankcards/internal/router"
	"bankcards/internal/service"
)

// @title Bank Cards API
// @version 1.0
// @description Bank card management API: card issuance, transfers between own cards, and the block request workflow.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	// An unusable card encryption key is a configuration error; refuse
	// to start rather than fail per request.
	cipher, err := cardnum.NewCipher(cfg.CardEncryptionKey)
	if err != nil {
		log.WithError(err).Fatal("card encryption key misconfigured")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Card{},
		&model.Transfer{},
		&model.BlockRequest{},
	); err != nil {
		log.WithError(err).Fatal("auto-migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories and the unit of work
	userRepo := repository.NewUserRepository(gormDB)
	cardRepo := repository.NewCardRepository(gormDB)
	transferRepo := repository.NewTransferRepository(gormDB)
	requestRepo := repository.NewBlockRequestRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	cardService := service.NewCardService(userRepo, cardRepo, transferRepo, txManager, cipher, cacheClient)
	blockRequestService := service.NewBlockRequestService(requestRepo, txManager)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	cardHandler := handler.NewCardHandler(cardService)
	blockRequestHandler := handler.NewBlockRequestHandler(blockRequestService)

	e := echo.New()
	e.Use(middleware.RequestID())

	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		cardHandler,
		blockRequestHandler,
	)

	addr := ":" + cfg.ServerPort
	log.WithField("addr", addr).Info("starting server")
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server start")
	}
}
