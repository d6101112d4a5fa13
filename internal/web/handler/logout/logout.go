// Package logout implements the logout endpoint and form action.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lootledger/lootledger/internal/config"
	"github.com/lootledger/lootledger/internal/web/handler"
	"github.com/lootledger/lootledger/internal/web/session"
)

// Path is the path to the logout endpoint.
const Path = handler.RootPath + "logout"

// Service is the logout handler service.
type Service struct {
	cfg      *config.Config
	sessions *session.Manager
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, sessions *session.Manager) {
	if app == nil || cfg == nil || sessions == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.sessions = sessions

	// reachable as a direct navigation target and as a form action
	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)
}

// Logout invalidates the active session, clears the session cookie and
// redirects. Logging out without a session is a no-op success.
func (s *Service) Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.CookieName)
	if sessionID != "" {
		if err := s.sessions.Invalidate(sessionID); err != nil {
			log.Error().Err(err).Msg("failed to invalidate session")
		}
	}

	// Clear the session cookie
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Redirect(handler.SafeRedirectPath(c.FormValue("redirect", handler.RootPath)), fiber.StatusFound)
}
