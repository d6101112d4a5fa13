// Package home provides the public landing page.
package home

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lootledger/lootledger/internal/config"
	"github.com/lootledger/lootledger/internal/web/handler"
	authmiddleware "github.com/lootledger/lootledger/internal/web/middleware/auth"
	"github.com/lootledger/lootledger/internal/web/navigation"
)

// TemplateName is the name of the home template.
const TemplateName = "home"

// Service is the home handler service.
type Service struct {
	cfg *config.Config
}

// Handler is the home handler.
var Handler = Service{}

// Init initializes the home handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config) {
	if app == nil || cfg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg

	app.Get(handler.RootPath, s.Get)
}

// Get renders the landing page; signed-in users see their identity.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext(s.cfg.Title, "home").
		AddBreadcrumb("Home", handler.RootPath, true)

	user, _ := authmiddleware.CurrentUser(c)

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"CurrentUser": user,
	}, handler.BaseLayout)
}
