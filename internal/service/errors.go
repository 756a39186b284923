package service

import "errors"

var (
	// ErrEmptyCart blocks checkout before any gateway call is made.
	ErrEmptyCart = errors.New("cart has no lines")

	// ErrGateway covers gateway failures: network errors, malformed
	// responses, missing identifiers.
	ErrGateway = errors.New("payment gateway failure")

	// ErrNoQRCode means the gateway created a pix payment but returned no
	// QR payload. Surfaced to the shopper distinctly from a network failure.
	ErrNoQRCode = errors.New("gateway returned no pix qr code")

	ErrCartNotFound  = errors.New("cart session not found")
	ErrLineNotFound  = errors.New("cart line index out of range")
	ErrWatchNotFound = errors.New("watch session not found")

	// Credential failures. Register/Verify return the distinct reason;
	// the HTTP layer collapses them into one generic message so callers
	// cannot enumerate usernames.
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUserExists         = errors.New("username already taken")
	ErrUnknownIdentity    = errors.New("unknown username")
	ErrSecretMismatch     = errors.New("password mismatch")
)
