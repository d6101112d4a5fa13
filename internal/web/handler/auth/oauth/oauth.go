package oauth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/auth"
	"github.com/lootledger/lootledger/internal/config"
	userctl "github.com/lootledger/lootledger/internal/db/controller/user"
	"github.com/lootledger/lootledger/internal/db/models"
	"github.com/lootledger/lootledger/internal/web/handler"
	"github.com/lootledger/lootledger/internal/web/session"
)

const (
	// LoginPath is the path to initiate the OAuth login handshake.
	LoginPath = handler.RootPath + "auth/oauth/login"

	// CallbackPath is the canonical OAuth callback path.
	CallbackPath = handler.RootPath + "auth/oauth/callback"

	// StateCookieName carries the anti-CSRF state token during the handshake.
	StateCookieName = "oauth_state"

	// RedirectCookieName carries the intended post-login path during the handshake.
	RedirectCookieName = "redirect"

	// handshakeCookieMaxAge bounds the handshake window to one hour.
	handshakeCookieMaxAge = 3600
)

// Service is the OAuth handshake handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	provider *auth.Provider
	sessions *session.Manager
}

// Handler is the OAuth handshake handler.
var Handler = Service{}

// Init initializes the OAuth handshake handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, provider *auth.Provider, sessions *session.Manager) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	if provider == nil || sessions == nil {
		log.Fatal().Msg("provider or session manager is nil")
		return
	}

	s.cfg = cfg
	s.db = db
	s.provider = provider
	s.sessions = sessions

	// register routes
	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)
}

// Login issues the authorization redirect.
// It stores the state token and the intended post-login path in short-lived
// cookies and sends the browser to the provider's authorization URL.
func (s *Service) Login(c *fiber.Ctx) error {
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	// only same-site paths may be used as a post-login target
	redirectPath := handler.SafeRedirectPath(c.Query(RedirectCookieName, handler.RootPath))

	s.setHandshakeCookie(c, StateCookieName, state)
	s.setHandshakeCookie(c, RedirectCookieName, redirectPath)

	return c.Redirect(s.provider.AuthCodeURL(state), fiber.StatusFound)
}

// Callback closes the handshake.
// The steps run strictly in order: state validation, code exchange, user
// resolution, session creation. The first failure is terminal.
func (s *Service) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")
	storedState := c.Cookies(StateCookieName)

	// state is single-use, consume it whatever happens next
	s.clearCookie(c, StateCookieName)

	if code == "" || state == "" || storedState == "" || state != storedState {
		log.Warn().Err(auth.ErrInvalidState).Msg("rejecting oauth callback")
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	profile, err := s.provider.Exchange(c.Context(), code)
	if err != nil {
		// provider detail stays in the server log
		log.Error().Err(err).Msg("oauth code exchange failed")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	user, err := s.resolveUser(profile)
	if err != nil {
		log.Error().Err(err).Str("snowflake", profile.ID).Msg("failed to resolve user")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	sessionID, err := s.sessions.Create(user.ID)
	if err != nil {
		// a freshly provisioned user persists, the next login attempt reuses it
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to create session")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.sessions.Expiry().Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	// the cookie is client-held, so the target is re-checked at consumption
	redirectPath := handler.SafeRedirectPath(c.Cookies(RedirectCookieName))

	s.clearCookie(c, RedirectCookieName)

	log.Info().Str("username", user.Username).Str("snowflake", user.Snowflake).
		Msg("user logged in via discord")

	return c.Redirect(redirectPath, fiber.StatusFound)
}

// resolveUser reuses the account for a known snowflake and provisions a new
// one from the profile on first login.
func (s *Service) resolveUser(profile *auth.Profile) (*models.User, error) {
	user, err := userctl.GetBySnowflake(s.db, profile.ID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, userctl.ErrUserNotFound) {
		return nil, err
	}

	return userctl.Create(s.db, profile.Username, profile.ID, auth.AvatarURL(profile.ID, profile.Avatar))
}

// setHandshakeCookie sets a short-lived handshake cookie scoped to the whole site.
func (s *Service) setHandshakeCookie(c *fiber.Ctx, name, value string) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     handler.RootPath,
		MaxAge:   handshakeCookieMaxAge,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)
}

// clearCookie expires a cookie on the client.
func (s *Service) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     handler.RootPath,
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}
