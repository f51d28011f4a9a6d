package main

import (
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/config"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/internal/platform/database"
	"github.com/shareit/service-booking/internal/platform/health"
	"github.com/shareit/service-booking/internal/repository"
	"github.com/shareit/service-booking/internal/repository/memory"
)

// stores bundles the repositories selected by the storage driver.
type stores struct {
	bookings bookingDomain.BookingRepository
	items    itemDomain.ItemRepository
	comments itemDomain.CommentRepository
	users    userDomain.UserRepository
	pinger   health.Pinger
	close    func()
}

func openStores(cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		s := memory.NewStore()
		return &stores{
			bookings: s.Bookings(),
			items:    s.Items(),
			comments: s.Comments(),
			users:    s.Users(),
			pinger:   s,
			close:    func() {},
		}, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.ItemModel{},
			&repository.BookingModel{},
			&repository.CommentModel{},
		); err != nil {
			return nil, err
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			return nil, err
		}
	}

	bookingRepo := repository.NewGormBookingRepository(db)
	return &stores{
		bookings: bookingRepo,
		items:    repository.NewGormItemRepository(db),
		comments: repository.NewGormCommentRepository(db),
		users:    repository.NewGormUserRepository(db),
		pinger:   bookingRepo,
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}
