// Package common contains small helpers and header names shared by the
// console client and the development identity service.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerScheme prefixes the credential in AuthorizationHeader.
	BearerScheme = "Bearer"

	// RequestIDHeader correlates a client call with server-side logs.
	RequestIDHeader = "X-Request-ID"
)

// BearerValue formats credential as an Authorization header value.
func BearerValue(credential string) string {
	return BearerScheme + " " + credential
}
