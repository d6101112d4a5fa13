package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrOAuthClientNotConfigured error if the Discord client id or secret is missing.
	ErrOAuthClientNotConfigured = errors.New("toml config auth.discord client id and secret can not be empty")

	// ErrOAuthRedirectURLEmpty error if the Discord redirect URL is missing.
	ErrOAuthRedirectURLEmpty = errors.New("toml config auth.discord.redirecturl can not be empty")
)
