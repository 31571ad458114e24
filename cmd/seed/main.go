// Command seed bootstraps an admin account and, optionally, demo data
// for local development.
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"bankcards/internal/cardnum"
	"bankcards/internal/config"
	"bankcards/internal/db"
	"bankcards/internal/errors"
	"bankcards/internal/model"
	"bankcards/internal/repository"
	"bankcards/internal/service"
)

func main() {
	log := logrus.New()

	adminUsername := flag.String("admin-user", "admin", "admin username to create")
	adminPassword := flag.String("admin-pass", "", "admin password (required)")
	demo := flag.Bool("demo", false, "also create a demo user with two cards")
	flag.Parse()

	if *adminPassword == "" {
		log.Fatal("-admin-pass is required")
	}

	cfg := config.Load()

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

	userRepo := repository.NewUserRepository(gormDB)
	cardRepo := repository.NewCardRepository(gormDB)
	transferRepo := repository.NewTransferRepository(gormDB)
	txManager := repository.NewTxManager(gormDB)

	userService := service.NewUserService(userRepo)
	cardService := service.NewCardService(userRepo, cardRepo, transferRepo, txManager, cipher, nil)

	ctx := context.Background()

	admin, err := userService.Create(ctx, *adminUsername, *adminPassword, model.RoleAdmin)
	switch err {
	case nil:
		log.WithField("id", admin.ID).Info("admin created")
	case errors.ErrConflict:
		log.WithField("username", *adminUsername).Info("admin already exists, skipping")
	default:
		log.WithError(err).Fatal("create admin")
	}

	if !*demo {
		return
	}

	user, err := userService.Create(ctx, "demo", "demo-password", model.RoleUser)
	if err != nil {
		if err == errors.ErrConflict {
			log.Info("demo user already exists, skipping demo data")
			return
		}
		log.WithError(err).Fatal("create demo user")
	}

	for i := 0; i < 2; i++ {
		card, err := cardService.Create(ctx, user.ID)
		if err != nil {
			log.WithError(err).Fatal("create demo card")
		}
		log.WithField("card_id", card.ID).Info("demo card created")
	}
}
