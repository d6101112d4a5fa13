// Package inventory provides the guarded inventory pages and JSON API.
package inventory

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/config"
	itemctl "github.com/lootledger/lootledger/internal/db/controller/item"
	"github.com/lootledger/lootledger/internal/web/handler"
	authmiddleware "github.com/lootledger/lootledger/internal/web/middleware/auth"
	"github.com/lootledger/lootledger/internal/web/navigation"
)

const (
	// Path is the path to the inventory page.
	Path = handler.RootPath + "inventory"

	// AddPath is the path of the inventory add form action.
	AddPath = Path + "/add"

	// DeletePath is the path of the inventory delete form action.
	DeletePath = Path + "/delete"

	// APIPath is the path of the JSON inventory API.
	APIPath = handler.RootPath + "api/inventory"

	// TemplateName is the name of the inventory template.
	TemplateName = "inventory"
)

// Service is the inventory handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	validate *validator.Validate
}

// Handler is the inventory handler.
var Handler = Service{}

// Init initializes the inventory handler.
// All routes sit behind the route guard; the owner of every operation is the
// session user, never a caller-supplied id.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.validate = validator.New()

	app.Get(Path, s.Get)
	app.Post(AddPath, s.PostAdd)
	app.Post(DeletePath, s.PostDelete)
	app.Post(APIPath, s.PostAPI)
}

// Get renders the inventory of the signed-in user.
func (s *Service) Get(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	items, err := itemctl.ListByOwner(s.db, user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list items")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	nav := navigation.NewContext("Inventory", "inventory").
		AddBreadcrumb("Home", handler.RootPath, false).
		AddBreadcrumb("Inventory", Path, true)

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"CurrentUser": user,
		"Items":       items,
	}, handler.BaseLayout)
}

// PostAdd handles the inventory add form and redirects back to the page.
func (s *Service) PostAdd(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	input := new(AddInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := s.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if _, err := itemctl.Upsert(s.db, user.ID, input.Name, input.Count); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Str("item", input.Name).
			Msg("failed to upsert item")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	return c.Redirect(Path, fiber.StatusFound)
}

// PostDelete removes an item from the inventory and redirects back to the
// page. Deleting an item that is already gone still redirects.
func (s *Service) PostDelete(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	input := new(DeleteInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := s.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := itemctl.Delete(s.db, user.ID, input.Name); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Str("item", input.Name).
			Msg("failed to delete item")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	return c.Redirect(Path, fiber.StatusFound)
}

// PostAPI upserts an item for the session user and answers JSON.
func (s *Service) PostAPI(c *fiber.Ctx) error {
	user, ok := authmiddleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false})
	}

	input := new(AddInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false})
	}

	if err := s.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false})
	}

	if _, err := itemctl.Upsert(s.db, user.ID, input.Name, input.Count); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Str("item", input.Name).
			Msg("failed to upsert item")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false})
	}

	return c.JSON(fiber.Map{"success": true})
}
