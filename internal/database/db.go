package database

import (
	"invoicable/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}

// Migrate auto-migrates the billing schema. Split out so tests can run it
// against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Document{},
		&model.Line{},
		&model.Customer{},
		&model.Product{},
		&model.AuditLog{},
	)
}
