// Package utils provides small helpers shared across handlers and
// middleware. This file covers JWT decoding. There is no login/session
// system in this service (spec Non-goals exclude authentication beyond
// owner-matching on confirm), so unlike the teacher's version this file
// only decodes an optional bearer token for rate-limit keying; it never
// issues tokens.
package utils

import "github.com/golang-jwt/jwt/v5"

// SubjectFromBearer parses raw as an HMAC-signed JWT (HS256/384/512) keyed with secret and
// returns its "sub" claim. ok is false if the token is missing, invalid,
// or carries no usable subject; callers should treat that as anonymous
// rather than reject the request, since no endpoint here requires a
// session token.
func SubjectFromBearer(secret, raw string) (sub string, ok bool) {
	if secret == "" || raw == "" {
		return "", false
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	if v, ok := claims["sub"].(string); ok && v != "" {
		return v, true
	}
	return "", false
}
