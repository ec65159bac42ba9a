package bootstrap

import (
	"log"

	"github.com/go-ferrusgate/ferrusgate/internal/config"
	"github.com/go-ferrusgate/ferrusgate/internal/store"
)

func initializeDatabase(cfg *config.Config) (*store.Store, error) {
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Seed(cfg.DefaultAdminPassword); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	log.Printf("Database initialized (driver: %s)", cfg.DatabaseDriver)
	return db, nil
}
