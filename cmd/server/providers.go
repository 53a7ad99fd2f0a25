// File: cmd/server/providers.go
package main

import (
	"log"

	"educycle_backend/internal/app"
	"educycle_backend/internal/auth"
	"educycle_backend/internal/book"
	"educycle_backend/internal/chat"
	"educycle_backend/internal/config"
	"educycle_backend/internal/credits"
	"educycle_backend/internal/distribution"
	"educycle_backend/internal/feedback"
	"educycle_backend/internal/ngo"
	"educycle_backend/internal/note"
	"educycle_backend/internal/notification"
	"educycle_backend/internal/platform/database"
	platformElasticsearch "educycle_backend/internal/platform/elasticsearch"
	"educycle_backend/internal/request"
	"educycle_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// application is what the injector hands back to main.
type application struct {
	Server *app.Server
	ES     *platformElasticsearch.ESClientWrapper
	Logger *zap.Logger
}

// models lists every table the server owns, in dependency order.
func models() []interface{} {
	return []interface{}{
		&user.User{},
		&credits.Transaction{},
		&book.Book{},
		&request.BookRequest{},
		&chat.Chat{},
		&chat.Message{},
		&notification.Notification{},
		&note.Note{},
		&ngo.BulkRequest{},
		&feedback.Feedback{},
		&distribution.Event{},
		&distribution.Comment{},
		&auth.OTPCode{},
	}
}

// provideDatabase opens the database, migrates it when DB_AUTO_MIGRATE is set and
// returns a cleanup that closes it and flushes the logger.
func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.Migrate(db, logger, models()...); err != nil {
			database.CloseGORMDB(db, logger)
			return nil, nil, err
		}
	}
	cleanup := func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db, logger)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return db, cleanup, nil
}

// provideCreditsService reads balances through a plain repository lookup, since the
// user service itself awards credits.
func provideCreditsService(repo credits.Repository, users user.Repository, cfg *config.Config, logger *zap.Logger) *credits.ServiceImplementation {
	return credits.NewService(repo, user.NewLookup(users), cfg, logger)
}
