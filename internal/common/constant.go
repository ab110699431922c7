// Package common contains shared constants and sentinel errors used across
// mcpanel client components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the raw token in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName correlates client log lines with backend requests.
	RequestIDHeaderName = "X-Request-ID"

	// CredentialSlot is the name of the durable slot holding the token.
	CredentialSlot = "token"
)
