package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lootledger/lootledger/internal/config"
)

func testClientConfig() *config.DiscordAuth {
	return &config.DiscordAuth{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8080/auth/oauth/callback",
	}
}

// newStubProvider spins up a stub provider answering the token and profile
// endpoints and returns a Provider pointed at it.
func newStubProvider(t *testing.T, tokenStatus, profileStatus int, profileBody string) *Provider {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tokenStatus)
		_, _ = w.Write([]byte(`{"access_token":"stub-token","token_type":"bearer"}`))
	})

	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "stub-token") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(profileStatus)
		_, _ = w.Write([]byte(profileBody))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewProviderWithEndpoints(
		testClientConfig(),
		server.URL+"/oauth2/authorize",
		server.URL+"/oauth2/token",
		server.URL+"/users/@me",
	)
}

func TestGenerateStateToken(t *testing.T) {
	seen := make(map[string]bool)

	for range 32 {
		state, err := GenerateStateToken()
		require.NoError(t, err)
		assert.NotEmpty(t, state)
		assert.False(t, seen[state], "state tokens must not repeat")
		seen[state] = true
	}
}

func TestAuthCodeURL(t *testing.T) {
	p := NewProvider(testClientConfig())

	url := p.AuthCodeURL("my-state")
	assert.Contains(t, url, AuthorizeURL)
	assert.Contains(t, url, "state=my-state")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "scope=identify")
}

func TestExchange_Success(t *testing.T) {
	p := newStubProvider(t, http.StatusOK, http.StatusOK,
		`{"id":"1122334455","username":"alice","avatar":"abc123"}`)

	profile, err := p.Exchange(context.Background(), "valid-code")
	require.NoError(t, err)
	assert.Equal(t, "1122334455", profile.ID)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "abc123", profile.Avatar)
}

func TestExchange_TokenRejected(t *testing.T) {
	p := newStubProvider(t, http.StatusBadRequest, http.StatusOK, `{}`)

	profile, err := p.Exchange(context.Background(), "revoked-code")
	require.ErrorIs(t, err, ErrExchangeFailed)
	assert.Nil(t, profile)
}

func TestExchange_ProfileFailures(t *testing.T) {
	testCases := []struct {
		name          string
		profileStatus int
		profileBody   string
	}{
		{name: "server error", profileStatus: http.StatusInternalServerError, profileBody: `{}`},
		{name: "garbage body", profileStatus: http.StatusOK, profileBody: `not json`},
		{name: "profile without id", profileStatus: http.StatusOK, profileBody: `{"username":"alice"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newStubProvider(t, http.StatusOK, tc.profileStatus, tc.profileBody)

			profile, err := p.Exchange(context.Background(), "valid-code")
			require.ErrorIs(t, err, ErrProfileFetchFailed)
			assert.Nil(t, profile)
		})
	}
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t,
		"https://cdn.discordapp.com/avatars/1122334455/abc123.webp",
		AvatarURL("1122334455", "abc123"),
	)

	// users without a custom avatar get no URL
	assert.Empty(t, AvatarURL("1122334455", ""))
	assert.Empty(t, AvatarURL("", "abc123"))
}
