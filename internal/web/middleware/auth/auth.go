package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/lootledger/lootledger/internal/db/models"
	oauthhandler "github.com/lootledger/lootledger/internal/web/handler/auth/oauth"
	"github.com/lootledger/lootledger/internal/web/session"
)

// CurrentUserKey is the fiber.Locals key carrying the authenticated user.
const CurrentUserKey = "CurrentUser"

// publicPrefixes are served without a valid session.
var publicPrefixes = []string{
	"/static",
	"/auth/oauth",
	"/logout",
	"/healthz",
}

// Guard gates access to protected routes on a validated session.
type Guard struct {
	sessions *session.Manager
}

// NewGuard creates a route guard bound to the given session manager.
func NewGuard(sessions *session.Manager) *Guard {
	if sessions == nil {
		panic("session manager is nil")
	}

	return &Guard{sessions: sessions}
}

// Middleware validates the session cookie on every request.
// On protected routes an absent or invalid session redirects to the OAuth
// login entry point with the originally requested URL preserved, so the
// browser lands back where it meant to go after authenticating.
func (g *Guard) Middleware(c *fiber.Ctx) error {
	user, ok, err := g.sessions.Validate(c.Cookies(session.CookieName))
	if err != nil {
		log.Error().Err(err).Msg("session store unavailable")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	if ok {
		// make the user available to handlers and templates,
		// also on public pages that render identity
		c.Locals(CurrentUserKey, user)
		return c.Next()
	}

	if isPublic(c.Path()) {
		return c.Next()
	}

	return c.Redirect(
		oauthhandler.LoginPath+"?redirect="+url.QueryEscape(c.OriginalURL()),
		fiber.StatusFound,
	)
}

// CurrentUser returns the authenticated user attached to the request, if any.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(CurrentUserKey).(*models.User)
	return user, ok && user != nil
}

// isPublic reports whether the path is reachable without a session.
func isPublic(path string) bool {
	if path == "/" {
		return true
	}

	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
