// Package common contains constants and helpers shared by the client, the
// CLI and the fake API.
package common

// Header names of the token-auth credential set. They travel on every
// authenticated request and come back on sign-in/sign-up responses.
const (
	HeaderAccessToken = "access-token"
	HeaderClient      = "client"
	HeaderUID         = "uid"
	HeaderExpiry      = "expiry"
	HeaderTokenType   = "token-type"

	TokenTypeBearer = "Bearer"
)

// HeaderRequestID correlates client log lines with fake API log lines.
const HeaderRequestID = "X-Request-Id"
