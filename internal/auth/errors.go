package auth

import "errors"

var (
	// ErrInvalidState is returned when the callback state does not match the issued state token.
	ErrInvalidState = errors.New("oauth state mismatch")

	// ErrExchangeFailed is returned when the provider rejects the code-for-token exchange.
	ErrExchangeFailed = errors.New("oauth code exchange failed")

	// ErrProfileFetchFailed is returned when the provider profile endpoint
	// cannot be read or returns a non-OK status.
	ErrProfileFetchFailed = errors.New("oauth profile fetch failed")
)
