// Package common contains shared constants and the error taxonomy used across
// studydeck components.
package common

// AuthorizationHeaderName is the HTTP header that carries the bearer
// credential on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the credential in AuthorizationHeaderName.
const BearerScheme = "Bearer "
