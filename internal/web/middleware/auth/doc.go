// Package auth provides the route guard middleware for the web application.
//
// The middleware validates the session cookie on every request through the
// session manager and attaches the resolved user to fiber.Locals. Requests
// to protected routes without a valid session are redirected to the OAuth
// login entry point, carrying the originally requested URL as the post-login
// redirect target.
//
// Usage:
//
//	guard := authmiddleware.NewGuard(sessions)
//	app.Use(guard.Middleware)
//
// Handlers read the authenticated user with CurrentUser(c).
package auth
