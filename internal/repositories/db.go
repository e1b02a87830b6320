package repositories

import (
	"fmt"

	"github.com/rohits-web03/studentvault/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDatabase opens the Postgres database at dsn and runs migrations.
func ConnectDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("connect database: DB_URL is not set")
	}
	return Open(postgres.Open(dsn))
}

// Open connects through any gorm dialector; tests pass an in-memory SQLite one.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	// Run migrations
	if err := db.AutoMigrate(&models.Student{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("dialect", dialector.Name()).Msg("Successfully connected to database")
	return db, nil
}
