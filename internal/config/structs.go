package config

import (
	"time"

	"github.com/lootledger/lootledger/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// DiscordAuth holds the OAuth2 client settings for the Discord provider.
type DiscordAuth struct {
	ClientID     string // OAuth2 client identifier
	ClientSecret string // OAuth2 client secret
	RedirectURL  string // callback URL the provider redirects to after authorization
}

// Auth groups all authentication related settings.
type Auth struct {
	Discord DiscordAuth
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Auth      Auth
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool    // use clean path middleware to allow multi slash requests
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}
