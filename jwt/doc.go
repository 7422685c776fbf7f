// Package jwt issues and verifies short-lived access tokens: compact JWS strings carrying
// userId, email, role, iat and exp claims.
//
// Verification fails closed. Every rejection is reported as either [ErrTokenExpired] or
// [ErrTokenMalformed]; nothing panics and no partial claims are returned.
package jwt
