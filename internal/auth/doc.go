// Package auth implements the Discord OAuth2 provider adapter.
//
// The adapter covers the provider side of the login handshake:
//   - GenerateStateToken creates the random anti-CSRF state value carried
//     through the authorization redirect.
//   - Provider.AuthCodeURL builds the provider authorization URL embedding
//     that state value.
//   - Provider.Exchange redeems the callback code for an access token and
//     fetches the verified Discord profile behind it.
//
// Discord speaks plain OAuth2 (no OIDC discovery document, no ID tokens),
// so the flow is driven directly through golang.org/x/oauth2 with the
// profile fetched from the Discord REST API.
//
// Example usage:
//
//	provider := auth.NewProvider(&cfg.Auth.Discord)
//	state, err := auth.GenerateStateToken()
//	url := provider.AuthCodeURL(state)
//	// ... after the provider redirects back:
//	profile, err := provider.Exchange(ctx, code)
package auth
