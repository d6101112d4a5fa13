// Package main provides the entry point for the Lootledger application.
// It initializes and runs a web server using the Fiber framework that lets
// players sign in with their Discord account and manage their party inventory
// through a small web interface and JSON API. The application uses gorm for
// data persistence and a store-backed session layer for authentication.
package main
