// Package fight provides the guarded fight page.
package fight

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lootledger/lootledger/internal/config"
	"github.com/lootledger/lootledger/internal/web/handler"
	authmiddleware "github.com/lootledger/lootledger/internal/web/middleware/auth"
	"github.com/lootledger/lootledger/internal/web/navigation"
)

const (
	// Path is the path to the fight page.
	Path = handler.RootPath + "fight"

	// TemplateName is the name of the fight template.
	TemplateName = "fight"
)

// Service is the fight handler service.
type Service struct {
	cfg *config.Config
}

// Handler is the fight handler.
var Handler = Service{}

// Init initializes the fight handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config) {
	if app == nil || cfg == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg

	app.Get(Path, s.Get)
}

// Get renders the fight page for the signed-in user.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	nav := navigation.NewContext("Fight", "fight").
		AddBreadcrumb("Home", handler.RootPath, false).
		AddBreadcrumb("Fight", Path, true)

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"CurrentUser": user,
	}, handler.BaseLayout)
}
