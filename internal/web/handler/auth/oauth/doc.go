// Package oauth implements the Discord OAuth login handshake endpoints.
//
// The handshake has two entry points. Login issues the authorization
// redirect: it stores a fresh anti-CSRF state token and the caller's
// intended post-login path in short-lived cookies and sends the browser to
// the provider. Callback closes the handshake: it checks the returned state
// against the cookie, exchanges the code for a verified profile, provisions
// the user on first login, creates a session and redirects the browser back
// to the stored path.
//
// No handshake state is kept server-side; the state and redirect cookies are
// the only carrier and are consumed on the callback.
package oauth
