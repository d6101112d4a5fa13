package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/auth"
	"github.com/lootledger/lootledger/internal/config"
	"github.com/lootledger/lootledger/internal/db/models"
	oauthhandler "github.com/lootledger/lootledger/internal/web/handler/auth/oauth"
	"github.com/lootledger/lootledger/internal/web/session"
)

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.data[key], nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = val

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

// newStubProvider answers the token and profile endpoints of the handshake.
// Only the code "valid-code" is accepted, like a provider-side single-use code.
func newStubProvider(t *testing.T, cfg *config.Config) *auth.Provider {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()

		if r.FormValue("code") != "valid-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))

			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"stub-token","token_type":"bearer"}`))
	})

	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1122334455","username":"alice","avatar":"abc123"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return auth.NewProviderWithEndpoints(
		&cfg.Auth.Discord,
		server.URL+"/oauth2/authorize",
		server.URL+"/oauth2/token",
		server.URL+"/users/@me",
	)
}

func newTestConfig() *config.Config {
	return &config.Config{
		Title: "Lootledger",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Hour},
		},
		Auth: config.Auth{
			Discord: config.DiscordAuth{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				RedirectURL:  "http://localhost:3000" + oauthhandler.CallbackPath,
			},
		},
	}
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	sessions *session.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Item{}))

	cfg := newTestConfig()
	sessions := session.New(&testStorage{data: make(map[string][]byte)}, db, cfg.Webserver.Session.ExpiryTime)
	service := New(cfg, db, newStubProvider(t, cfg), sessions)

	return &testEnv{app: service.App, db: db, sessions: sessions}
}

func perform(t *testing.T, app *fiber.App, method, target string, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}

	return nil
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)

	return count
}

// login walks the authorization-request leg and returns the issued cookies.
func login(t *testing.T, env *testEnv, redirect string) (state, redirectCookie *http.Cookie, authURL string) {
	t.Helper()

	target := oauthhandler.LoginPath
	if redirect != "" {
		target += "?redirect=" + url.QueryEscape(redirect)
	}

	resp := perform(t, env.app, http.MethodGet, target, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	state = cookieByName(resp, oauthhandler.StateCookieName)
	redirectCookie = cookieByName(resp, oauthhandler.RedirectCookieName)
	require.NotNil(t, state, "state cookie must be set")
	require.NotNil(t, redirectCookie, "redirect cookie must be set")

	return state, redirectCookie, resp.Header.Get("Location")
}

// completeLogin walks the whole handshake and returns the session cookie.
func completeLogin(t *testing.T, env *testEnv, redirect string) *http.Cookie {
	t.Helper()

	state, redirectCookie, _ := login(t, env, redirect)

	resp := perform(t, env.app, http.MethodGet,
		oauthhandler.CallbackPath+"?code=valid-code&state="+url.QueryEscape(state.Value),
		"", state, redirectCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	sessionCookie := cookieByName(resp, session.CookieName)
	require.NotNil(t, sessionCookie, "session cookie must be set on success")

	return sessionCookie
}

func TestLogin_IssuesHandshakeCookies(t *testing.T) {
	env := newTestEnv(t)

	state, redirectCookie, location := login(t, env, "/inventory")

	// cookies bound to the whole site with a one hour window
	assert.Equal(t, "/", state.Path)
	assert.Equal(t, 3600, state.MaxAge)
	assert.NotEmpty(t, state.Value)

	assert.Equal(t, "/", redirectCookie.Path)
	assert.Equal(t, 3600, redirectCookie.MaxAge)
	assert.Equal(t, "/inventory", redirectCookie.Value)

	// the provider URL embeds the issued state
	assert.Contains(t, location, "state="+url.QueryEscape(state.Value))
	assert.Contains(t, location, "client_id=client-id")
}

func TestLogin_RejectsForeignRedirectTargets(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name   string
		target string
	}{
		{name: "absolute url", target: "https://evil.example/phish"},
		{name: "protocol relative", target: "//evil.example/phish"},
		{name: "protocol relative backslash", target: `/\evil.example/phish`},
		{name: "relative path", target: "phish"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, redirectCookie, _ := login(t, env, tc.target)
			assert.Equal(t, "/", redirectCookie.Value)
		})
	}
}

func TestCallback_RejectsForgedRedirectCookie(t *testing.T) {
	env := newTestEnv(t)

	// a client can write the redirect cookie itself, bypassing Login
	state, _, _ := login(t, env, "/")
	forged := &http.Cookie{Name: oauthhandler.RedirectCookieName, Value: "//evil.example/phish"}

	resp := perform(t, env.app, http.MethodGet,
		oauthhandler.CallbackPath+"?code=valid-code&state="+url.QueryEscape(state.Value),
		"", state, forged)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestCallback_InvalidState(t *testing.T) {
	env := newTestEnv(t)

	stateCookie := &http.Cookie{Name: oauthhandler.StateCookieName, Value: "issued-state"}

	testCases := []struct {
		name    string
		target  string
		cookies []*http.Cookie
	}{
		{
			name:   "missing code",
			target: oauthhandler.CallbackPath + "?state=issued-state",
			cookies: []*http.Cookie{
				stateCookie,
			},
		},
		{
			name:    "missing state parameter",
			target:  oauthhandler.CallbackPath + "?code=valid-code",
			cookies: []*http.Cookie{stateCookie},
		},
		{
			name:   "missing state cookie",
			target: oauthhandler.CallbackPath + "?code=valid-code&state=issued-state",
		},
		{
			name:    "state mismatch",
			target:  oauthhandler.CallbackPath + "?code=valid-code&state=forged-state",
			cookies: []*http.Cookie{stateCookie},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := perform(t, env.app, http.MethodGet, tc.target, "", tc.cookies...)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Nil(t, cookieByName(resp, session.CookieName), "no session may be attached")
			assert.Equal(t, int64(0), countUsers(t, env.db), "no user may be provisioned")
		})
	}
}

func TestCallback_ExchangeFailure(t *testing.T) {
	env := newTestEnv(t)

	state, redirectCookie, _ := login(t, env, "/inventory")

	// stolen state with a code the provider rejects (already redeemed)
	resp := perform(t, env.app, http.MethodGet,
		oauthhandler.CallbackPath+"?code=spent-code&state="+url.QueryEscape(state.Value),
		"", state, redirectCookie)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Nil(t, cookieByName(resp, session.CookieName))
	assert.Equal(t, int64(0), countUsers(t, env.db))
}

func TestCallback_RepeatLoginReusesUser(t *testing.T) {
	env := newTestEnv(t)

	first := completeLogin(t, env, "/")
	second := completeLogin(t, env, "/")

	assert.Equal(t, int64(1), countUsers(t, env.db), "repeat login must reuse the account")
	assert.NotEqual(t, first.Value, second.Value, "every login gets a distinct session")

	var user models.User
	require.NoError(t, env.db.First(&user).Error)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "1122334455", user.Snowflake)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/1122334455/abc123.webp", user.AvatarURL)
}

func TestEndToEnd_LoginGateAndInventory(t *testing.T) {
	env := newTestEnv(t)

	// unauthenticated request bounces to the login entry point,
	// preserving the requested path
	resp := perform(t, env.app, http.MethodGet, "/inventory", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t,
		oauthhandler.LoginPath+"?redirect="+url.QueryEscape("/inventory"),
		resp.Header.Get("Location"),
	)

	// full handshake with redirect target /inventory
	state, redirectCookie, _ := login(t, env, "/inventory")

	resp = perform(t, env.app, http.MethodGet,
		oauthhandler.CallbackPath+"?code=valid-code&state="+url.QueryEscape(state.Value),
		"", state, redirectCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/inventory", resp.Header.Get("Location"), "browser lands where it meant to go")

	sessionCookie := cookieByName(resp, session.CookieName)
	require.NotNil(t, sessionCookie)
	assert.Equal(t, int(time.Hour.Seconds()), sessionCookie.MaxAge)

	// the handshake cookies are consumed
	consumedState := cookieByName(resp, oauthhandler.StateCookieName)
	require.NotNil(t, consumedState)
	assert.Empty(t, consumedState.Value)

	// the session now passes the guard
	resp = perform(t, env.app, http.MethodGet, "/inventory", "", sessionCookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInventory_AddAndList(t *testing.T) {
	env := newTestEnv(t)
	sessionCookie := completeLogin(t, env, "/")

	form := url.Values{"name": {"Healing Potion"}, "count": {"3"}}
	resp := perform(t, env.app, http.MethodPost, "/inventory/add", form.Encode(), sessionCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/inventory", resp.Header.Get("Location"))

	var itemRow models.Item
	require.NoError(t, env.db.First(&itemRow).Error)
	assert.Equal(t, "Healing Potion", itemRow.Name)
	assert.Equal(t, 3, itemRow.Count)
}

func TestInventory_Delete(t *testing.T) {
	env := newTestEnv(t)
	sessionCookie := completeLogin(t, env, "/")

	form := url.Values{"name": {"Healing Potion"}, "count": {"3"}}
	resp := perform(t, env.app, http.MethodPost, "/inventory/add", form.Encode(), sessionCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	form = url.Values{"name": {"Healing Potion"}}
	resp = perform(t, env.app, http.MethodPost, "/inventory/delete", form.Encode(), sessionCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/inventory", resp.Header.Get("Location"))

	var count int64
	require.NoError(t, env.db.Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// deleting an item that is already gone still redirects
	resp = perform(t, env.app, http.MethodPost, "/inventory/delete", form.Encode(), sessionCookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestInventory_RejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	sessionCookie := completeLogin(t, env, "/")

	form := url.Values{"name": {""}, "count": {"3"}}
	resp := perform(t, env.app, http.MethodPost, "/inventory/add", form.Encode(), sessionCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryAPI_Upsert(t *testing.T) {
	env := newTestEnv(t)
	sessionCookie := completeLogin(t, env, "/")

	body := url.Values{"name": {"Arrow"}, "count": {"20"}}
	resp := perform(t, env.app, http.MethodPost, "/api/inventory", body.Encode(), sessionCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)

	// repeated add updates the count on the same row
	body = url.Values{"name": {"Arrow"}, "count": {"12"}}
	resp = perform(t, env.app, http.MethodPost, "/api/inventory", body.Encode(), sessionCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []models.Item
	require.NoError(t, env.db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 12, items[0].Count)
}

func TestInventoryAPI_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	body := url.Values{"name": {"Arrow"}, "count": {"20"}}
	resp := perform(t, env.app, http.MethodPost, "/api/inventory", body.Encode())

	// guarded like any protected route
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	sessionCookie := completeLogin(t, env, "/")

	form := url.Values{"redirect": {"/fight"}}
	resp := perform(t, env.app, http.MethodPost, "/logout", form.Encode(), sessionCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/fight", resp.Header.Get("Location"))

	cleared := cookieByName(resp, session.CookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// the invalidated session never validates again
	resp = perform(t, env.app, http.MethodGet, "/inventory", "", sessionCookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLogout_RejectsForeignRedirectTargets(t *testing.T) {
	env := newTestEnv(t)
	sessionCookie := completeLogin(t, env, "/")

	form := url.Values{"redirect": {"//evil.example/phish"}}
	resp := perform(t, env.app, http.MethodPost, "/logout", form.Encode(), sessionCookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestLogout_WithoutSessionIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	resp := perform(t, env.app, http.MethodGet, "/logout", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := perform(t, env.app, http.MethodGet, HealthPath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
