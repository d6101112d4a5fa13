// Package daemon assembles the database, session store and web service.
package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	sessionmysql "github.com/gofiber/storage/mysql"
	sessionpostgres "github.com/gofiber/storage/postgres"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/auth"
	"github.com/lootledger/lootledger/internal/config"
	"github.com/lootledger/lootledger/internal/db/dsn"
	"github.com/lootledger/lootledger/internal/db/models"
	"github.com/lootledger/lootledger/internal/web"
	"github.com/lootledger/lootledger/internal/web/session"
)

// sessionTable is the table name used by the session storage backend.
const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	webService web.Service
	addr       string
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(d.addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Item{},
	); err != nil {
		panic("failed to migrate database")
	}

	sessions := session.New(openSessionStorage(cfg), db, cfg.Webserver.Session.ExpiryTime)
	provider := auth.NewProvider(&cfg.Auth.Discord)

	return &Daemon{
		webService: *web.New(cfg, db, provider, sessions),
		addr:       fmt.Sprintf(":%d", cfg.Webserver.Port),
	}
}

// openDialector picks the gorm driver matching the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	if cfg.DB.GormEngine == "postgres" {
		return gormpostgres.Open(dsn.Create(cfg))
	}

	return gormmysql.Open(dsn.Create(cfg))
}

// openSessionStorage builds the session storage backend on the same engine as gorm.
func openSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "postgres" {
		return sessionpostgres.New(sessionpostgres.Config{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Database: cfg.DB.Name,
			Username: cfg.DB.User,
			Password: cfg.DB.Password,
			Table:    sessionTable,
		})
	}

	return sessionmysql.New(sessionmysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         sessionTable,
	})
}
