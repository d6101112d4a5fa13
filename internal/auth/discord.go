package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/lootledger/lootledger/internal/config"
)

const (
	// AuthorizeURL is the Discord OAuth2 authorization endpoint.
	AuthorizeURL = "https://discord.com/oauth2/authorize"

	// TokenURL is the Discord OAuth2 token endpoint.
	TokenURL = "https://discord.com/api/oauth2/token"

	// ProfileURL is the Discord endpoint returning the authenticated user's profile.
	ProfileURL = "https://discord.com/api/users/@me"

	// cdnBaseURL is the Discord CDN serving user avatars.
	cdnBaseURL = "https://cdn.discordapp.com"

	// exchangeTimeout bounds the code exchange and the profile fetch.
	// A hanging provider surfaces as an exchange failure instead of a stuck request.
	exchangeTimeout = 15 * time.Second
)

// Profile is the subset of the Discord user object the application consumes.
type Profile struct {
	// ID is the Discord snowflake identifying the user.
	ID string `json:"id"`
	// Username is the Discord display name.
	Username string `json:"username"`
	// Avatar is the avatar hash (empty if the user has no custom avatar).
	Avatar string `json:"avatar"`
}

// Provider handles the Discord OAuth2 handshake.
type Provider struct {
	oauth2     oauth2.Config
	profileURL string
}

// NewProvider creates a new Discord OAuth2 provider from the application config.
func NewProvider(cfg *config.DiscordAuth) *Provider {
	return &Provider{
		oauth2: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthorizeURL,
				TokenURL: TokenURL,
			},
			Scopes: []string{"identify"},
		},
		profileURL: ProfileURL,
	}
}

// NewProviderWithEndpoints creates a provider against custom endpoints.
// Used by tests to point the handshake at a stub provider.
func NewProviderWithEndpoints(cfg *config.DiscordAuth, authURL, tokenURL, profileURL string) *Provider {
	p := NewProvider(cfg)
	p.oauth2.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	p.profileURL = profileURL

	return p
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// AuthCodeURL returns the Discord authorization URL with the state token embedded.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// Exchange redeems the callback code for a token and fetches the profile behind it.
// Both network calls run under one bounded deadline; any failure is terminal
// for the handshake and must be mapped to a generic failure by the caller.
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileFetchFailed, err)
	}

	// the token client renews nothing here, it only signs the profile request
	resp, err := p.oauth2.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrProfileFetchFailed, resp.StatusCode)
	}

	var profile Profile
	if err = json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileFetchFailed, err)
	}

	if profile.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", ErrProfileFetchFailed)
	}

	return &profile, nil
}

// AvatarURL derives the CDN URL for a user avatar from the profile fields.
// Users without a custom avatar get an empty URL.
func AvatarURL(snowflake, avatarHash string) string {
	if snowflake == "" || avatarHash == "" {
		return ""
	}

	return fmt.Sprintf("%s/avatars/%s/%s.webp", cdnBaseURL, snowflake, avatarHash)
}
